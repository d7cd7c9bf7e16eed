// Package app holds the assembled components of the review service and
// controls their lifecycle.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/llm"
	"github.com/sevigo/review-bot/internal/render"
	"github.com/sevigo/review-bot/internal/server"
)

// App holds the main application components. The CLI uses the exported
// fields directly without starting the HTTP server.
type App struct {
	ctx        context.Context
	Cfg        *config.Config
	Logger     *slog.Logger
	Job        core.Job
	Guidelines *llm.GuidelineStore
	HTML       *render.HTMLRenderer
	server     *server.Server
	watcher    *llm.GuidelineWatcher
}

// NewApp bundles the application's components. watcher may be nil.
func NewApp(
	ctx context.Context,
	cfg *config.Config,
	srv *server.Server,
	job core.Job,
	guidelines *llm.GuidelineStore,
	watcher *llm.GuidelineWatcher,
	html *render.HTMLRenderer,
	logger *slog.Logger,
) *App {
	return &App{
		ctx:        ctx,
		Cfg:        cfg,
		Logger:     logger,
		Job:        job,
		Guidelines: guidelines,
		HTML:       html,
		server:     srv,
		watcher:    watcher,
	}
}

// Start runs the HTTP server and, when configured, the guideline watcher.
func (a *App) Start() error {
	set := a.Guidelines.Current()
	a.Logger.Info("starting review-bot",
		"server_port", a.Cfg.Server.Port,
		"llm_provider", a.Cfg.AI.LLMProvider,
		"model", a.Cfg.AI.GeneratorModel,
		"language", set.Language,
		"guidelines_version", set.Version,
		"fail_fast", a.Cfg.Review.FailFast,
		"history", a.Cfg.Database.Enabled,
	)

	if a.watcher != nil {
		go func() {
			if err := a.watcher.Run(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error("guideline watcher stopped", "error", err)
			}
		}()
	}

	err := a.server.Start()
	if err != nil {
		a.Logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.Logger.Info("shutting down review-bot")

	if err := a.server.Stop(); err != nil {
		a.Logger.Error("review-bot stopped with errors", "error", err)
		return err
	}

	a.Logger.Info("review-bot stopped successfully")
	return nil
}
