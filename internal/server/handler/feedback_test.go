package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/render"
	"github.com/sevigo/review-bot/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFeedbackHandler(t *testing.T, job core.Job, archiveDir string) *FeedbackHandler {
	t.Helper()
	html, err := render.NewHTMLRenderer()
	require.NoError(t, err)
	return NewFeedbackHandler(job, html, archiveDir, discardLogger())
}

func sampleResult(req *core.ReviewRequest) *core.ReviewResult {
	return &core.ReviewResult{
		RequestID: req.ID,
		RepoURL:   req.URL,
		Branch:    "main",
		Language:  "Java",
		Files: []core.FileReview{
			{Index: 1, Name: "A.java", Content: "class A {}", Feedback: "First."},
			{Index: 2, Name: "B.java", Content: "class B {}", Feedback: "Second."},
		},
	}
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func TestFeedbackHandler_BadBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	job := mocks.NewMockJob(ctrl)
	h := newFeedbackHandler(t, job, "")

	for _, body := range []string{"", "not json", `{"url": 5}`} {
		rec := httptest.NewRecorder()
		h.Handle(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "Please provide a GitHub repository URL", decodeMessage(t, rec))
	}
}

func TestFeedbackHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        &core.ValidationError{Message: core.MissingURLMessage},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Please provide a GitHub repository URL",
		},
		{
			name:       "repository access",
			err:        &core.RepositoryAccessError{Language: "Java", Err: errors.New("authentication required")},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Error while fetching Java code from the repository: authentication required",
		},
		{
			name:       "generation",
			err:        &core.GenerationError{FileIndex: 2, Err: errors.New("rate limited")},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to generate feedback for file 2: rate limited",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			job := mocks.NewMockJob(ctrl)
			job.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			rec := httptest.NewRecorder()
			newFeedbackHandler(t, job, "").Handle(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(`{"url":"https://example.com/repo.git"}`)))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantMsg, decodeMessage(t, rec))
		})
	}
}

func TestFeedbackHandler_HTML(t *testing.T) {
	ctrl := gomock.NewController(t)
	job := mocks.NewMockJob(ctrl)
	var requestID string
	job.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *core.ReviewRequest) (*core.ReviewResult, error) {
			assert.Equal(t, "https://example.com/repo.git", req.URL)
			assert.NotEmpty(t, req.ID)
			requestID = req.ID
			return sampleResult(req), nil
		},
	)

	archiveDir := filepath.Join(t.TempDir(), "archive")
	rec := httptest.NewRecorder()
	newFeedbackHandler(t, job, archiveDir).Handle(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(`{"url":"https://example.com/repo.git"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="feedback.html"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, requestID, rec.Header().Get(RequestIDHeader))
	assert.Empty(t, rec.Header().Get(FailedFilesHeader))
	assert.Contains(t, rec.Body.String(), "Java File 1")
	assert.Contains(t, rec.Body.String(), "<p>Second.</p>")

	archived, err := os.ReadFile(filepath.Join(archiveDir, ArchiveFileName(requestID)))
	require.NoError(t, err)
	assert.Equal(t, rec.Body.String(), string(archived))
}

func TestFeedbackHandler_JSON(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
	}{
		{name: "query parameter", target: "/feedback?format=json"},
		{name: "accept header", target: "/feedback", accept: "text/plain, application/json;q=0.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			job := mocks.NewMockJob(ctrl)
			job.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, req *core.ReviewRequest) (*core.ReviewResult, error) {
					return sampleResult(req), nil
				},
			)

			req := httptest.NewRequest(http.MethodPost, tc.target, strings.NewReader(`{"url":"https://example.com/repo.git"}`))
			if tc.accept != "" {
				req.Header.Set("Accept", tc.accept)
			}
			rec := httptest.NewRecorder()
			newFeedbackHandler(t, job, "").Handle(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, `{"Java File 1":"First.","Java File 2":"Second."}`, rec.Body.String())
		})
	}
}

func TestFeedbackHandler_FailedFilesHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	job := mocks.NewMockJob(ctrl)
	job.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *core.ReviewRequest) (*core.ReviewResult, error) {
			result := sampleResult(req)
			result.Files[0].Feedback = ""
			result.Files[0].Err = &core.GenerationError{FileIndex: 1, Err: errors.New("timeout")}
			result.Files = append(result.Files, core.FileReview{Index: 3, Err: errors.New("timeout")})
			return result, nil
		},
	)

	rec := httptest.NewRecorder()
	newFeedbackHandler(t, job, "").Handle(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(`{"url":"https://example.com/repo.git"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1,3", rec.Header().Get(FailedFilesHeader))
	assert.Contains(t, rec.Body.String(), "Feedback could not be generated for file(s): 1, 3")
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/feedback?format=html", nil)
	req.Header.Set("Accept", "application/json")
	assert.False(t, wantsJSON(req))

	req = httptest.NewRequest(http.MethodPost, "/feedback", nil)
	req.Header.Set("Accept", "*/*")
	assert.False(t, wantsJSON(req))
}
