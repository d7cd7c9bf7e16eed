package render

import (
	"encoding/json"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/sevigo/review-bot/internal/core"
)

// JSONContentType is the media type of the feedback mapping.
const JSONContentType = "application/json"

// FeedbackMap maps "<Language> File <n>" to the feedback text, in discovery
// order. A file whose generation failed maps to an empty string.
func FeedbackMap(result *core.ReviewResult) *orderedmap.OrderedMap[string, string] {
	m := orderedmap.New[string, string]()
	for _, f := range result.Files {
		m.Set(result.Label(f.Index), f.Feedback)
	}
	return m
}

// JSON writes the feedback mapping for result to w.
func JSON(w io.Writer, result *core.ReviewResult) error {
	data, err := json.Marshal(FeedbackMap(result))
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}
	_, err = w.Write(data)
	return err
}
