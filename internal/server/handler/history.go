package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sevigo/review-bot/internal/storage"
)

// HistoryDisabledMessage is returned when no database is configured.
const HistoryDisabledMessage = "Review history is disabled"

type historyResponse struct {
	Reviews any `json:"reviews"`
	Count   int `json:"count"`
}

// HistoryHandler lists recent review runs.
type HistoryHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(store storage.Store, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// List handles GET /api/v1/reviews?limit=n.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeMessage(w, h.logger, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		if errors.Is(err, storage.ErrHistoryDisabled) {
			writeMessage(w, h.logger, http.StatusNotFound, HistoryDisabledMessage)
			return
		}
		h.logger.Error("failed to list review runs", "error", err)
		writeMessage(w, h.logger, http.StatusInternalServerError, "Failed to load review history")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, historyResponse{Reviews: runs, Count: len(runs)})
}
