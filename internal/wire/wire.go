//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/review-bot/internal/app"
	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/render"
	"github.com/sevigo/review-bot/internal/server"
)

func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(
		config.LoadConfig,
		ReviewSet,
		render.NewHTMLRenderer,
		server.NewServer,
		app.NewApp,
	)
	return &app.App{}, nil, nil
}
