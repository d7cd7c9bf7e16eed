// Package storage persists the review history.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/review-bot/internal/core"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

// ErrHistoryDisabled is returned by the no-op store.
var ErrHistoryDisabled = errors.New("review history is disabled")

// Store defines the interface for all database operations.
//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks . Store
type Store interface {
	SaveRun(ctx context.Context, run *core.ReviewRun) error
	ListRuns(ctx context.Context, limit int) ([]core.ReviewRun, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a Store backed by Postgres.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveRun inserts a review run and fills in its generated ID.
func (s *postgresStore) SaveRun(ctx context.Context, run *core.ReviewRun) error {
	query := `
		INSERT INTO review_runs (
			request_id, repo_url, repo_name, branch, head_sha, language,
			file_count, failed_count, status, error_message, duration_ms, created_at
		) VALUES (
			:request_id, :repo_url, :repo_name, :branch, :head_sha, :language,
			:file_count, :failed_count, :status, :error_message, :duration_ms, :created_at
		) RETURNING id`

	rows, err := s.db.NamedQueryContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to save review run %s: %w", run.RequestID, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&run.ID); err != nil {
			return fmt.Errorf("failed to read review run id: %w", err)
		}
	}
	return rows.Err()
}

// ListRuns returns the most recent review runs, newest first.
func (s *postgresStore) ListRuns(ctx context.Context, limit int) ([]core.ReviewRun, error) {
	query := `
		SELECT id, request_id, repo_url, repo_name, branch, head_sha, language,
		       file_count, failed_count, status, error_message, duration_ms, created_at
		FROM review_runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	runs := []core.ReviewRun{}
	if err := s.db.SelectContext(ctx, &runs, query, ClampLimit(limit)); err != nil {
		return nil, fmt.Errorf("failed to list review runs: %w", err)
	}
	return runs, nil
}

// ClampLimit bounds a client-supplied page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

type noopStore struct{}

// NewNoopStore returns a Store used when the database is disabled. Saving is
// a no-op and listing reports ErrHistoryDisabled.
func NewNoopStore() Store {
	return noopStore{}
}

func (noopStore) SaveRun(context.Context, *core.ReviewRun) error {
	return nil
}

func (noopStore) ListRuns(context.Context, int) ([]core.ReviewRun, error) {
	return nil, ErrHistoryDisabled
}
