package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewResult_Labels(t *testing.T) {
	result := &ReviewResult{Language: "Java"}
	assert.Equal(t, "Java File 1", result.Label(1))
	assert.Equal(t, "Java File 12", result.Label(12))
	assert.Equal(t, "Go File 2", FileLabel("Go", 2))
}

func TestReviewResult_FailedIndexes(t *testing.T) {
	result := &ReviewResult{
		Files: []FileReview{
			{Index: 1, Feedback: "ok"},
			{Index: 2, Err: errors.New("timeout")},
			{Index: 3, Feedback: "ok"},
			{Index: 4, Err: errors.New("rate limited")},
		},
	}
	assert.Equal(t, []int{2, 4}, result.FailedIndexes())
	assert.True(t, result.Files[1].Failed())
	assert.False(t, result.Files[0].Failed())

	assert.Nil(t, (&ReviewResult{}).FailedIndexes())
}
