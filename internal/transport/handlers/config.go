package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/internal/settings"
)

// configHandler serves and replaces the operational settings document.
// Both directions are admin-gated.
type configHandler struct {
	store  *settings.Store
	guard  *Guard
	logger *slog.Logger
}

// NewConfigHandler creates the handler for the settings endpoint.
func NewConfigHandler(store *settings.Store, guard *Guard, logger *slog.Logger) http.Handler {
	if store == nil {
		panic("store cannot be nil")
	}
	if guard == nil {
		panic("guard cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &configHandler{store: store, guard: guard, logger: logger}
}

func (h *configHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.guard.RequireAdmin(w, r) == nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, h.logger, http.StatusOK, h.store.Current())
	case http.MethodPut, http.MethodPost:
		h.replace(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *configHandler) replace(w http.ResponseWriter, r *http.Request) {
	st := h.store.Current()
	r.Body = http.MaxBytesReader(w, r.Body, st.MaxPayloadBytes)

	var next settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeError(w, h.logger,
			domainerrors.New("transport", "config", domainerrors.ErrValidation, err),
			fmt.Sprintf("invalid settings document: %v", err))
		return
	}

	if err := h.store.Save(&next); err != nil {
		writeError(w, h.logger, err, "settings rejected")
		return
	}

	h.logger.Info("settings replaced", "folders", len(next.Folders))
	writeJSON(w, h.logger, http.StatusOK, h.store.Current())
}
