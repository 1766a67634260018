// Package handlers implements the HTTP endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// decodeBody decodes the JSON request body into v, capping it at limit
// bytes. On failure it writes the error response and reports false.
func decodeBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, logger,
				domainerrors.New("transport", op, domainerrors.ErrPayloadTooLarge, err),
				"request body exceeds the configured limit")
			return false
		}
		writeError(w, logger,
			domainerrors.New("transport", op, domainerrors.ErrValidation, err),
			"invalid request body")
		return false
	}
	return true
}

// writeJSON sends a JSON response with the given status.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set(hostdrop.HeaderContentType, hostdrop.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps err onto the failure taxonomy and sends the JSON error
// body. message is the caller-visible detail; err stays server-side.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, message string) {
	status := domainerrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Debug("request rejected", "error", err, "message", message)
	}

	writeJSON(w, logger, status, hostdrop.ErrorBody{
		Error:   domainerrors.Code(err),
		Message: message,
	})
}

// writeOutcomeError sends the JSON error body for an already-typed pipeline
// outcome.
func writeOutcomeError(w http.ResponseWriter, logger *slog.Logger, status int, kind error, message string) {
	writeJSON(w, logger, status, hostdrop.ErrorBody{
		Error:   domainerrors.Code(kind),
		Message: message,
	})
}
