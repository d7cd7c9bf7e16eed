package core

import "time"

// Run statuses recorded in the review history.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// ReviewRun is the persisted summary of one review. Feedback text is not
// stored.
type ReviewRun struct {
	ID          int64     `db:"id" json:"id"`
	RequestID   string    `db:"request_id" json:"request_id"`
	RepoURL     string    `db:"repo_url" json:"repo_url"`
	RepoName    string    `db:"repo_name" json:"repo_name"`
	Branch      string    `db:"branch" json:"branch"`
	HeadSHA     string    `db:"head_sha" json:"head_sha"`
	Language    string    `db:"language" json:"language"`
	FileCount   int       `db:"file_count" json:"file_count"`
	FailedCount int       `db:"failed_count" json:"failed_count"`
	Status      string    `db:"status" json:"status"`
	Error       string    `db:"error_message" json:"error,omitempty"`
	DurationMS  int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
