// Package jobs runs code reviews.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/gitutil"
	"github.com/sevigo/review-bot/internal/llm"
	"github.com/sevigo/review-bot/internal/storage"
)

const historyTimeout = 5 * time.Second

// PromptBuilder hands out one Prompter per run, bound to the guideline set
// active when the run starts.
type PromptBuilder interface {
	Snapshot() core.Prompter
}

// Options controls how a review run treats failures.
type Options struct {
	// FailFast aborts the run on the first generation failure. Otherwise the
	// failure is recorded on the file and the run continues.
	FailFast bool
	// DefaultBranch is used when a request names no branch.
	DefaultBranch string
}

// ReviewJob fetches a repository and reviews its source files one by one.
type ReviewJob struct {
	fetcher   core.RepoFetcher
	prompts   PromptBuilder
	generator llm.Generator
	store     storage.Store
	opts      Options
	logger    *slog.Logger
}

// NewReviewJob creates a new ReviewJob.
func NewReviewJob(
	fetcher core.RepoFetcher,
	prompts PromptBuilder,
	generator llm.Generator,
	store storage.Store,
	opts Options,
	logger *slog.Logger,
) core.Job {
	if fetcher == nil {
		panic("repository fetcher cannot be nil")
	}
	if prompts == nil {
		panic("prompt builder cannot be nil")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if store == nil {
		store = storage.NewNoopStore()
	}
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = core.DefaultBranch
	}
	return &ReviewJob{
		fetcher:   fetcher,
		prompts:   prompts,
		generator: generator,
		store:     store,
		opts:      opts,
		logger:    logger,
	}
}

// Run executes the review for req. Files are reviewed strictly in discovery
// order and the result holds exactly one FileReview per file.
func (j *ReviewJob) Run(ctx context.Context, req *core.ReviewRequest) (*core.ReviewResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Branch == "" {
		req.Branch = j.opts.DefaultBranch
	}

	logger := j.logger.With("request_id", req.ID, "repo", gitutil.Redact(req.URL), "branch", req.Branch)
	result := &core.ReviewResult{
		RequestID: req.ID,
		RepoURL:   req.URL,
		Branch:    req.Branch,
		StartedAt: time.Now(),
	}

	prompter := j.prompts.Snapshot()
	lang := prompter.Language()
	result.Language = lang.Name

	logger.InfoContext(ctx, "starting review", "language", lang.Name)
	checkout, cleanup, err := j.fetcher.Fetch(ctx, req.URL, req.Branch, lang)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch repository", "error", err)
		j.record(ctx, result, err)
		return nil, err
	}
	defer cleanup()

	result.RepoName = checkout.RepoName
	result.HeadSHA = checkout.HeadSHA
	result.Files = make([]core.FileReview, 0, len(checkout.Files))

	for _, file := range checkout.Files {
		review, err := j.reviewFile(ctx, prompter, file)
		if err != nil {
			var genErr *core.GenerationError
			if j.opts.FailFast || !errors.As(err, &genErr) || ctx.Err() != nil {
				logger.ErrorContext(ctx, "review aborted", "index", file.Index, "file", file.Name, "error", err)
				j.record(ctx, result, err)
				return nil, err
			}
			logger.WarnContext(ctx, "feedback generation failed, continuing", "index", file.Index, "file", file.Name, "error", err)
			review.Err = err
		}
		result.Files = append(result.Files, review)
	}

	result.FinishedAt = time.Now()
	j.record(ctx, result, nil)
	logger.InfoContext(ctx, "review completed",
		"files", len(result.Files),
		"failed", len(result.FailedIndexes()),
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)
	return result, nil
}

// reviewFile builds the prompt for file and asks the generator for feedback.
// The returned FileReview always carries the file's identity.
func (j *ReviewJob) reviewFile(ctx context.Context, prompter core.Prompter, file core.SourceFile) (core.FileReview, error) {
	review := core.FileReview{Index: file.Index, Name: file.Name, Content: file.Content}

	if err := ctx.Err(); err != nil {
		return review, generationFailure(file.Index, err)
	}

	prompt, err := prompter.Build(file.Index, file.Content)
	if err != nil {
		return review, &core.UnexpectedError{Err: err}
	}

	j.logger.DebugContext(ctx, "generating feedback", "index", file.Index, "file", file.Name, "prompt_bytes", len(prompt))
	feedback, err := j.generator.Generate(ctx, prompt)
	if err != nil {
		return review, generationFailure(file.Index, err)
	}
	review.Feedback = feedback
	return review, nil
}

// generationFailure attaches the file index to a generation error.
func generationFailure(index int, err error) error {
	var genErr *core.GenerationError
	if errors.As(err, &genErr) {
		return &core.GenerationError{FileIndex: index, Err: genErr.Err}
	}
	return &core.GenerationError{FileIndex: index, Err: err}
}

// record stores a summary of the run. History failures never fail the review.
func (j *ReviewJob) record(ctx context.Context, result *core.ReviewResult, runErr error) {
	finished := result.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	run := &core.ReviewRun{
		RequestID:   result.RequestID,
		RepoURL:     gitutil.Redact(result.RepoURL),
		RepoName:    result.RepoName,
		Branch:      result.Branch,
		HeadSHA:     result.HeadSHA,
		Language:    result.Language,
		FileCount:   len(result.Files),
		FailedCount: len(result.FailedIndexes()),
		Status:      core.RunSucceeded,
		DurationMS:  finished.Sub(result.StartedAt).Milliseconds(),
		CreatedAt:   result.StartedAt,
	}
	if runErr != nil {
		run.Status = core.RunFailed
		run.Error = runErr.Error()
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	if err := j.store.SaveRun(saveCtx, run); err != nil {
		j.logger.Warn("failed to record review run", "request_id", result.RequestID, "error", fmt.Errorf("history: %w", err))
	}
}
