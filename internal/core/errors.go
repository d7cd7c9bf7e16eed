package core

import (
	"errors"
	"fmt"
	"net/http"
)

// MissingURLMessage is returned to clients that omit the repository location.
const MissingURLMessage = "Please provide a GitHub repository URL"

// ValidationError reports unusable client input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RepositoryAccessError reports a failed clone or checkout. Message carries the
// version-control client's own text.
type RepositoryAccessError struct {
	Language string
	Err      error
}

func (e *RepositoryAccessError) Error() string {
	return fmt.Sprintf("Error while fetching %s code from the repository: %v", e.Language, e.Err)
}

func (e *RepositoryAccessError) Unwrap() error {
	return e.Err
}

// UnexpectedError covers any other failure while preparing the working copy.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("An error occurred: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// GenerationError reports a failed call to the text-generation service.
// FileIndex is zero when the failure is not tied to a file.
type GenerationError struct {
	FileIndex int
	Err       error
}

func (e *GenerationError) Error() string {
	if e.FileIndex > 0 {
		return fmt.Sprintf("Failed to generate feedback for file %d: %v", e.FileIndex, e.Err)
	}
	return fmt.Sprintf("Failed to generate feedback: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error produced by a review run to a response status.
func HTTPStatus(err error) int {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
