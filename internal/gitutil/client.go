// Package gitutil provides a client for working with Git repositories.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// ErrUnsupportedURL is returned for repository locations the client refuses to clone.
var ErrUnsupportedURL = errors.New("unsupported repository URL")

// Client handles interacting with Git repositories.
type Client struct {
	Logger *slog.Logger
	// Token, when set, authenticates HTTP(S) clones as x-access-token.
	Token string
	// AllowLocal permits cloning from plain filesystem paths.
	AllowLocal bool
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger, token string) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger, Token: token}
}

// Open opens a Git repository at a given path.
func (c *Client) Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return repo, nil
}

// Clone performs a full clone of repoURL into path.
func (c *Client) Clone(ctx context.Context, repoURL, path string) error {
	kind := Classify(repoURL)
	if kind == KindUnsupported || (kind == KindLocal && !c.AllowLocal) {
		return fmt.Errorf("%w: %s", ErrUnsupportedURL, repoURL)
	}

	c.Logger.InfoContext(ctx, "cloning repository", "url", Redact(repoURL), "path", path)
	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:  repoURL,
		Auth: c.authFor(kind),
	})
	if err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}
	return nil
}

// Checkout switches the worktree at path to branch. A local branch is used
// when it exists; otherwise it is created from origin/<branch>.
func (c *Client) Checkout(ctx context.Context, path, branch string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Logger.InfoContext(ctx, "checking out branch", "branch", branch)

	repo, err := c.Open(path)
	if err != nil {
		return err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	localRef := plumbing.NewBranchReferenceName(branch)
	opts := &git.CheckoutOptions{Branch: localRef, Force: true}

	if _, err := repo.Reference(localRef, true); err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("failed to resolve branch %q: %w", branch, err)
		}
		remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch), true)
		if err != nil {
			return fmt.Errorf("git checkout failed: branch %q not found in remote: %w", branch, err)
		}
		opts.Hash = remoteRef.Hash()
		opts.Create = true
	}

	if err := worktree.Checkout(opts); err != nil {
		return fmt.Errorf("git checkout failed: %w", err)
	}
	return nil
}

// HeadSHA returns the current HEAD SHA of the repository at the given path.
func (c *Client) HeadSHA(path string) (string, error) {
	repo, err := c.Open(path)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("git HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func (c *Client) authFor(kind URLKind) transport.AuthMethod {
	if c.Token == "" || kind != KindHTTP {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: c.Token}
}
