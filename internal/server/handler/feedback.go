package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/render"
)

const (
	maxRequestBody = 1 << 20

	// FailedFilesHeader lists the indexes of files whose feedback could not be generated.
	FailedFilesHeader = "X-Review-Failed-Files"
	RequestIDHeader   = "X-Request-ID"
	attachmentName    = "feedback.html"
)

type feedbackRequest struct {
	URL string `json:"url"`
}

// FeedbackHandler runs a review for the repository named in the request body
// and returns the feedback as an HTML attachment or a JSON mapping.
type FeedbackHandler struct {
	job        core.Job
	html       *render.HTMLRenderer
	archiveDir string
	logger     *slog.Logger
}

// NewFeedbackHandler creates a new feedback handler. Rendered documents are
// also written to archiveDir when it is not empty.
func NewFeedbackHandler(job core.Job, html *render.HTMLRenderer, archiveDir string, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		job:        job,
		html:       html,
		archiveDir: archiveDir,
		logger:     logger,
	}
}

// Handle processes POST /feedback.
func (h *FeedbackHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var body feedbackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		h.logger.Debug("could not decode feedback request", "error", err)
		writeMessage(w, h.logger, http.StatusBadRequest, core.MissingURLMessage)
		return
	}

	req := &core.ReviewRequest{ID: uuid.NewString(), URL: body.URL}
	w.Header().Set(RequestIDHeader, req.ID)

	result, err := h.job.Run(r.Context(), req)
	if err != nil {
		status := core.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("review failed", "request_id", req.ID, "error", err)
		}
		writeMessage(w, h.logger, status, err.Error())
		return
	}

	if failed := result.FailedIndexes(); len(failed) > 0 {
		w.Header().Set(FailedFilesHeader, joinInts(failed))
	}

	if wantsJSON(r) {
		var buf bytes.Buffer
		if err := render.JSON(&buf, result); err != nil {
			h.logger.Error("failed to encode feedback", "request_id", req.ID, "error", err)
			writeMessage(w, h.logger, http.StatusInternalServerError, (&core.UnexpectedError{Err: err}).Error())
			return
		}
		w.Header().Set("Content-Type", render.JSONContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
		return
	}

	var buf bytes.Buffer
	if err := h.html.Render(&buf, result); err != nil {
		h.logger.Error("failed to render feedback document", "request_id", req.ID, "error", err)
		writeMessage(w, h.logger, http.StatusInternalServerError, (&core.UnexpectedError{Err: err}).Error())
		return
	}
	h.archive(req.ID, buf.Bytes())

	w.Header().Set("Content-Type", render.HTMLContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+attachmentName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// archive keeps a copy of the document. Failures are logged only.
func (h *FeedbackHandler) archive(requestID string, document []byte) {
	if h.archiveDir == "" {
		return
	}
	if err := os.MkdirAll(h.archiveDir, 0o755); err != nil {
		h.logger.Warn("could not create archive directory", "dir", h.archiveDir, "error", err)
		return
	}
	path := filepath.Join(h.archiveDir, ArchiveFileName(requestID))
	if err := os.WriteFile(path, document, 0o644); err != nil {
		h.logger.Warn("could not archive feedback document", "path", path, "error", err)
		return
	}
	h.logger.Info("feedback document archived", "request_id", requestID, "path", path)
}

// ArchiveFileName is the name under which a request's document is archived.
func ArchiveFileName(requestID string) string {
	return fmt.Sprintf("feedback-%s.html", requestID)
}

func wantsJSON(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "json":
		return true
	case "html":
		return false
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == render.JSONContentType {
			return true
		}
	}
	return false
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

