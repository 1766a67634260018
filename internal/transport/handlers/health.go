package handlers

import (
	"log/slog"
	"net/http"
)

// healthResponse represents the JSON response for health checks.
type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler provides a simple liveness endpoint.
type healthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler creates the handler for the /health endpoint.
func NewHealthHandler(logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &healthHandler{logger: logger}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, healthResponse{Status: "ok"})
}
