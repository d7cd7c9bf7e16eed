package wire

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/jobs"
	"github.com/sevigo/review-bot/internal/llm"
	"github.com/sevigo/review-bot/internal/logger"
	"github.com/sevigo/review-bot/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Logging: logger.Config{Level: "error", Format: "text"},
		AI: config.AIConfig{
			LLMProvider:    "openai",
			GeneratorModel: "gpt-3.5-turbo",
			APIKey:         "sk-test",
			MaxTokens:      500,
		},
		Review: config.ReviewConfig{Branch: "main", FailFast: true},
	}
}

func TestProvideStore_Disabled(t *testing.T) {
	cfg := testConfig()
	var buf bytes.Buffer
	l := logger.NewLogger(cfg.Logging, &buf)

	store, cleanup, err := provideStore(t.Context(), cfg, l)
	require.NoError(t, err)
	defer cleanup()

	_, err = store.ListRuns(t.Context(), 1)
	assert.ErrorIs(t, err, storage.ErrHistoryDisabled)
}

func TestProvideGuidelines(t *testing.T) {
	cfg := testConfig()
	l := logger.NewLogger(cfg.Logging, &bytes.Buffer{})

	store, err := provideGuidelineStore(cfg, l)
	require.NoError(t, err)
	assert.Equal(t, "Java", store.Current().Language)
	assert.Nil(t, provideGuidelineWatcher(cfg, store, l))

	path := filepath.Join(t.TempDir(), "py.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 4\nextension: .py\npreamble: p\nguidelines:\n  - g\n"), 0o644))
	cfg.Review.GuidelinesFile = path
	cfg.Review.WatchGuidelines = true

	store, err = provideGuidelineStore(cfg, l)
	require.NoError(t, err)
	assert.Equal(t, "Python", store.Current().Language)
	assert.NotNil(t, provideGuidelineWatcher(cfg, store, l))

	cfg.Review.GuidelinesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = provideGuidelineStore(cfg, l)
	assert.Error(t, err)
}

func TestProvideReviewJob(t *testing.T) {
	cfg := testConfig()
	l := logger.NewLogger(cfg.Logging, &bytes.Buffer{})

	guidelines, err := provideGuidelineStore(cfg, l)
	require.NoError(t, err)
	fetcher := provideRepoFetcher(cfg, provideGitClient(cfg, l), l)
	generator, err := provideGenerator(t.Context(), cfg, l)
	require.NoError(t, err)
	pm, err := llm.NewPromptManager()
	require.NoError(t, err)

	job := provideReviewJob(cfg, fetcher, providePromptBuilder(cfg, pm, guidelines), generator, storage.NewNoopStore(), l)
	_, isReviewJob := job.(*jobs.ReviewJob)
	assert.True(t, isReviewJob)

	_, err = job.Run(t.Context(), &core.ReviewRequest{})
	var validationErr *core.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
