package core

import (
	"fmt"
	"time"
)

// DefaultBranch is checked out when a request does not name a branch.
const DefaultBranch = "main"

// ReviewRequest is the validated input of a single review run.
type ReviewRequest struct {
	ID     string
	URL    string
	Branch string
}

// SourceFile is one file extracted from a working copy. Index is 1-based and
// reflects discovery order.
type SourceFile struct {
	Index   int
	Name    string
	Content string
}

// FileReview is the feedback generated for one SourceFile. Err is set instead
// of Feedback when generation failed and the run was configured to continue.
type FileReview struct {
	Index    int
	Name     string
	Content  string
	Feedback string
	Err      error
}

// Failed reports whether feedback generation failed for this file.
func (f FileReview) Failed() bool {
	return f.Err != nil
}

// ReviewResult holds every FileReview of a run, in discovery order.
type ReviewResult struct {
	RequestID  string
	RepoURL    string
	RepoName   string
	Branch     string
	HeadSHA    string
	Language   string
	Files      []FileReview
	StartedAt  time.Time
	FinishedAt time.Time
}

// Label returns the key under which the n-th file is reported, e.g. "Java File 2".
func (r *ReviewResult) Label(index int) string {
	return FileLabel(r.Language, index)
}

// FailedIndexes lists the indexes of files whose generation failed.
func (r *ReviewResult) FailedIndexes() []int {
	var failed []int
	for _, f := range r.Files {
		if f.Failed() {
			failed = append(failed, f.Index)
		}
	}
	return failed
}

// FileLabel formats the public identifier of a reviewed file.
func FileLabel(language string, index int) string {
	return fmt.Sprintf("%s File %d", language, index)
}

// Language identifies the single source language reviewed by a run.
type Language struct {
	Name      string
	Extension string
}
