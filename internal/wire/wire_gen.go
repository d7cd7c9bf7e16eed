// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"
	"fmt"

	"github.com/sevigo/review-bot/internal/app"
	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/llm"
	"github.com/sevigo/review-bot/internal/render"
	"github.com/sevigo/review-bot/internal/server"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	loggerConfig := provideLoggerConfig(cfg)
	logWriter, logCleanup, err := provideLogWriter(cfg)
	if err != nil {
		return nil, nil, err
	}
	slogLogger := provideSlogLogger(loggerConfig, logWriter)

	// Review history
	store, dbCleanup, err := provideStore(ctx, cfg, slogLogger)
	if err != nil {
		logCleanup()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	storeCleanup := func() {
		dbCleanup()
		logCleanup()
	}

	// Guidelines
	guidelines, err := provideGuidelineStore(cfg, slogLogger)
	if err != nil {
		storeCleanup()
		return nil, nil, err
	}
	watcher := provideGuidelineWatcher(cfg, guidelines, slogLogger)

	// Repository fetcher
	gitClient := provideGitClient(cfg, slogLogger)
	fetcher := provideRepoFetcher(cfg, gitClient, slogLogger)

	// Prompts
	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		storeCleanup()
		return nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}
	promptBuilder := providePromptBuilder(cfg, promptMgr, guidelines)

	// Generator
	generator, err := provideGenerator(ctx, cfg, slogLogger)
	if err != nil {
		storeCleanup()
		return nil, nil, fmt.Errorf("failed to create generator: %w", err)
	}

	// Review Job
	reviewJob := provideReviewJob(cfg, fetcher, promptBuilder, generator, store, slogLogger)

	// Rendering
	htmlRenderer, err := render.NewHTMLRenderer()
	if err != nil {
		storeCleanup()
		return nil, nil, err
	}

	// Server
	srv := server.NewServer(cfg, reviewJob, store, htmlRenderer, slogLogger)

	// App
	application := app.NewApp(ctx, cfg, srv, reviewJob, guidelines, watcher, htmlRenderer, slogLogger)

	cleanup := func() {
		storeCleanup()
	}

	return application, cleanup, nil
}
