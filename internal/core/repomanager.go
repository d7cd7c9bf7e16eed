package core

import "context"

// RepoFetcher obtains a private working copy of a remote repository and
// extracts the source files of lang. The returned cleanup func removes the
// working copy and must be called once the files are no longer needed.
//go:generate mockgen -destination=../../mocks/mock_repo_fetcher.go -package=mocks . RepoFetcher
type RepoFetcher interface {
	Fetch(ctx context.Context, repoURL, branch string, lang Language) (*Checkout, func(), error)
}

// Prompter renders review prompts against one fixed guideline set. A run
// takes a single Prompter and uses it for the scan and every file.
type Prompter interface {
	Language() Language
	Build(fileIndex int, fileContent string) (string, error)
}

// Checkout is the outcome of a successful fetch.
type Checkout struct {
	Path     string
	RepoName string
	HeadSHA  string
	Language Language
	Files    []SourceFile
}
