package gitutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRemote creates a repository on the default branch with one commit and
// an extra "main" branch pointing at the same commit.
func initRemote(t *testing.T, files map[string]string) (string, plumbing.Hash) {
	t.Helper()
	remotePath := filepath.Join(t.TempDir(), "remote")

	r, err := git.PlainInit(remotePath, false)
	require.NoError(t, err)
	w, err := r.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(remotePath, name), []byte(content), 0o644))
		_, err := w.Add(name)
		require.NoError(t, err)
	}
	commit, err := w.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), commit)
	require.NoError(t, r.Storer.SetReference(ref))
	return remotePath, commit
}

func newLocalClient() *Client {
	c := NewClient(slog.New(slog.NewTextHandler(os.Stdout, nil)), "")
	c.AllowLocal = true
	return c
}

func TestClient_CloneCheckoutHead(t *testing.T) {
	remotePath, commit := initRemote(t, map[string]string{"App.java": "class App {}"})
	client := newLocalClient()
	localPath := filepath.Join(t.TempDir(), "work")

	require.NoError(t, client.Clone(context.Background(), remotePath, localPath))
	require.NoError(t, client.Checkout(context.Background(), localPath, "main"))

	sha, err := client.HeadSHA(localPath)
	require.NoError(t, err)
	assert.Equal(t, commit.String(), sha)

	content, err := os.ReadFile(filepath.Join(localPath, "App.java"))
	require.NoError(t, err)
	assert.Equal(t, "class App {}", string(content))
}

func TestClient_CheckoutMissingBranch(t *testing.T) {
	remotePath, _ := initRemote(t, map[string]string{"App.java": "class App {}"})
	client := newLocalClient()
	localPath := filepath.Join(t.TempDir(), "work")

	require.NoError(t, client.Clone(context.Background(), remotePath, localPath))
	err := client.Checkout(context.Background(), localPath, "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestClient_CloneFailures(t *testing.T) {
	t.Run("Missing local repository", func(t *testing.T) {
		client := newLocalClient()
		err := client.Clone(context.Background(), filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "work"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "git clone failed")
	})

	t.Run("Local paths refused by default", func(t *testing.T) {
		client := NewClient(nil, "")
		err := client.Clone(context.Background(), "/srv/repo", filepath.Join(t.TempDir(), "work"))
		assert.ErrorIs(t, err, ErrUnsupportedURL)
	})

	t.Run("file scheme refused", func(t *testing.T) {
		client := newLocalClient()
		err := client.Clone(context.Background(), "file:///srv/repo", filepath.Join(t.TempDir(), "work"))
		assert.ErrorIs(t, err, ErrUnsupportedURL)
	})
}

func TestClient_AuthFor(t *testing.T) {
	client := NewClient(nil, "secret")
	assert.NotNil(t, client.authFor(KindHTTP))
	assert.Nil(t, client.authFor(KindSSH))
	assert.Nil(t, NewClient(nil, "").authFor(KindHTTP))
}
