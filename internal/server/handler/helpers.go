// Package handler provides the HTTP handlers of the review service.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// MethodNotAllowedMessage is the body text of every 405 response.
const MethodNotAllowedMessage = "Method not allowed"

type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// writeMessage writes the {"message": ...} body used for every error.
func writeMessage(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, messageResponse{Message: message})
}

// MethodNotAllowed answers requests whose method a route does not accept.
func MethodNotAllowed(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, logger, http.StatusMethodNotAllowed, MethodNotAllowedMessage)
	}
}
