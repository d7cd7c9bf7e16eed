package jobs

import (
	"strings"

	"github.com/sevigo/review-bot/internal/core"
)

// ValidateRequest checks client input before any work is done and
// normalizes the repository URL.
func ValidateRequest(req *core.ReviewRequest) error {
	if req == nil {
		return &core.ValidationError{Message: core.MissingURLMessage}
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return &core.ValidationError{Message: core.MissingURLMessage}
	}
	req.Branch = strings.TrimSpace(req.Branch)
	return nil
}
