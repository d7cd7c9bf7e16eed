package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/db"
	"github.com/sevigo/review-bot/internal/gitutil"
	"github.com/sevigo/review-bot/internal/jobs"
	"github.com/sevigo/review-bot/internal/llm"
	"github.com/sevigo/review-bot/internal/logger"
	"github.com/sevigo/review-bot/internal/repomanager"
	"github.com/sevigo/review-bot/internal/storage"
)

// ReviewSet provides everything needed to run a review.
var ReviewSet = wire.NewSet(
	provideLoggerConfig,
	provideLogWriter,
	provideSlogLogger,
	provideStore,
	provideGitClient,
	wire.Bind(new(repomanager.VCS), new(*gitutil.Client)),
	provideGuidelineStore,
	provideGuidelineWatcher,
	provideRepoFetcher,
	llm.NewPromptManager,
	providePromptBuilder,
	provideGenerator,
	provideReviewJob,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg *config.Config) (io.Writer, func(), error) {
	return logger.OpenOutput(cfg.Logging)
}

func provideSlogLogger(loggerConfig logger.Config, writer io.Writer) *slog.Logger {
	l := logger.NewLogger(loggerConfig, writer)
	slog.SetDefault(l)
	return l
}

// provideStore returns the Postgres-backed history when the database is
// enabled and a no-op store otherwise.
func provideStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	conn, cleanup, err := db.NewDatabase(ctx, &cfg.Database, logger)
	if errors.Is(err, db.ErrDisabled) {
		logger.Info("review history disabled")
		return storage.NewNoopStore(), func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return storage.NewStore(conn.DB), cleanup, nil
}

func provideGitClient(cfg *config.Config, logger *slog.Logger) *gitutil.Client {
	return gitutil.NewClient(logger, cfg.Git.Token)
}

func provideGuidelineStore(cfg *config.Config, logger *slog.Logger) (*llm.GuidelineStore, error) {
	set, err := llm.LoadGuidelines(cfg.Review.GuidelinesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load guidelines: %w", err)
	}
	logger.Info("guidelines loaded",
		"source", guidelineSource(cfg.Review.GuidelinesFile),
		"version", set.Version,
		"language", set.Language,
		"extension", set.Extension,
		"rules", len(set.Guidelines),
	)
	return llm.NewGuidelineStore(set), nil
}

func guidelineSource(path string) string {
	if path == "" {
		return "embedded:" + llm.DefaultGuidelinesFile
	}
	return path
}

// provideGuidelineWatcher returns nil unless hot reload is enabled for a
// guideline file.
func provideGuidelineWatcher(cfg *config.Config, store *llm.GuidelineStore, logger *slog.Logger) *llm.GuidelineWatcher {
	if !cfg.Review.WatchGuidelines || cfg.Review.GuidelinesFile == "" {
		return nil
	}
	return llm.NewGuidelineWatcher(cfg.Review.GuidelinesFile, store, logger)
}

func provideRepoFetcher(cfg *config.Config, vcs repomanager.VCS, logger *slog.Logger) core.RepoFetcher {
	return repomanager.New(vcs, repomanager.Options{
		WorkDir:   cfg.Review.WorkDir,
		Recursive: cfg.Review.Recursive,
	}, logger)
}

func providePromptBuilder(cfg *config.Config, pm *llm.PromptManager, guidelines *llm.GuidelineStore) *llm.PromptBuilder {
	return llm.NewPromptBuilder(pm, guidelines, llm.ModelProvider(cfg.AI.LLMProvider))
}

func provideGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Generator, error) {
	return llm.NewGenerator(ctx, cfg.AI, logger)
}

func provideReviewJob(cfg *config.Config, fetcher core.RepoFetcher, prompts *llm.PromptBuilder, generator llm.Generator, store storage.Store, logger *slog.Logger) core.Job {
	return jobs.NewReviewJob(fetcher, prompts, generator, store, jobs.Options{
		FailFast:      cfg.Review.FailFast,
		DefaultBranch: cfg.Review.Branch,
	}, logger)
}
