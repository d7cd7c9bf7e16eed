// Package repomanager prepares private working copies of remote repositories
// and extracts the source files to review from them.
package repomanager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/gitutil"
)

// VCS is the subset of version-control operations the manager needs.
type VCS interface {
	Clone(ctx context.Context, repoURL, path string) error
	Checkout(ctx context.Context, path, branch string) error
	HeadSHA(path string) (string, error)
}

// Options tunes how working copies are created and scanned.
type Options struct {
	// WorkDir is the parent of every temporary working copy; empty means os.TempDir.
	WorkDir string
	// Recursive walks subdirectories instead of only the top level.
	Recursive bool
}

type manager struct {
	vcs    VCS
	opts   Options
	logger *slog.Logger
}

// New creates a RepoFetcher that clones into a fresh temporary directory on
// every call.
func New(vcs VCS, opts Options, logger *slog.Logger) core.RepoFetcher {
	return &manager{
		vcs:    vcs,
		opts:   opts,
		logger: logger,
	}
}

// Fetch clones repoURL, checks out branch and returns the files with lang's
// extension.
// On success the caller owns the returned cleanup func; on failure the
// working copy has already been removed.
func (m *manager) Fetch(ctx context.Context, repoURL, branch string, lang core.Language) (*core.Checkout, func(), error) {
	if branch == "" {
		branch = core.DefaultBranch
	}

	workDir, err := os.MkdirTemp(m.opts.WorkDir, "review-bot-*")
	if err != nil {
		return nil, nil, &core.UnexpectedError{Err: fmt.Errorf("failed to create working directory: %w", err)}
	}
	cleanup := func() {
		m.logger.Debug("removing working copy", "path", workDir)
		if removeErr := os.RemoveAll(workDir); removeErr != nil {
			m.logger.Error("failed to remove working copy", "path", workDir, "error", removeErr)
		}
	}

	repoPath := filepath.Join(workDir, "repo")
	if err := m.vcs.Clone(ctx, repoURL, repoPath); err != nil {
		cleanup()
		return nil, nil, &core.RepositoryAccessError{Language: lang.Name, Err: err}
	}
	if err := m.vcs.Checkout(ctx, repoPath, branch); err != nil {
		cleanup()
		return nil, nil, &core.RepositoryAccessError{Language: lang.Name, Err: err}
	}

	headSHA, err := m.vcs.HeadSHA(repoPath)
	if err != nil {
		m.logger.Warn("could not resolve HEAD of working copy", "error", err)
	}

	files, err := ScanFiles(repoPath, lang.Extension, m.opts.Recursive)
	if err != nil {
		cleanup()
		return nil, nil, &core.UnexpectedError{Err: err}
	}

	repoName, ok := gitutil.RepositoryName(repoURL)
	if !ok {
		repoName = filepath.Base(repoURL)
	}

	m.logger.InfoContext(ctx, "repository fetched",
		"repo", repoName,
		"branch", branch,
		"head", headSHA,
		"extension", lang.Extension,
		"files", len(files),
	)
	return &core.Checkout{
		Path:     repoPath,
		RepoName: repoName,
		HeadSHA:  headSHA,
		Language: lang,
		Files:    files,
	}, cleanup, nil
}
