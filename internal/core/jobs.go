// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
)

// Job represents a single, executable review run. The HTTP handler and the CLI
// both drive a Job; neither knows how repositories are fetched or how feedback
// is generated.
//go:generate mockgen -destination=../../mocks/mock_job.go -package=mocks . Job
type Job interface {
	// Run fetches the repository described by the request, reviews every
	// matching source file in discovery order and returns the collected result.
	// A non-nil error is always one of the typed errors declared in errors.go.
	Run(ctx context.Context, req *ReviewRequest) (*ReviewResult, error)
}
