package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hostdrop/hostdrop/internal/auth"
	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/internal/identity"
	"github.com/hostdrop/hostdrop/internal/service"
	"github.com/hostdrop/hostdrop/internal/settings"
	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// writeHandler persists a payload into the sandbox root.
type writeHandler struct {
	store        *settings.Store
	orchestrator *service.Orchestrator
	logger       *slog.Logger
}

// NewWriteHandler creates the handler for global writes.
func NewWriteHandler(store *settings.Store, orchestrator *service.Orchestrator, logger *slog.Logger) http.Handler {
	if store == nil {
		panic("store cannot be nil")
	}
	if orchestrator == nil {
		panic("orchestrator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &writeHandler{store: store, orchestrator: orchestrator, logger: logger}
}

func (h *writeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		w.Header().Set("Allow", "PUT, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	runWrite(w, r, h.store, h.orchestrator, h.logger, "")
}

// runWrite reads the request body and runs the write pipeline for the given
// folder ("" for the sandbox root).
func runWrite(
	w http.ResponseWriter,
	r *http.Request,
	store *settings.Store,
	orchestrator *service.Orchestrator,
	logger *slog.Logger,
	folder string,
) {
	st := store.Current()

	// Cap one byte past the limit so an at-limit payload reads cleanly and
	// an oversized one fails here instead of buffering unbounded input.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, st.MaxPayloadBytes+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, logger,
				domainerrors.New("transport", "write", domainerrors.ErrPayloadTooLarge, err),
				"payload exceeds the configured limit")
			return
		}
		writeError(w, logger,
			domainerrors.New("transport", "write", domainerrors.ErrValidation, err),
			"cannot read request body")
		return
	}

	outcome := orchestrator.Write(r.Context(), service.WriteRequest{
		Folder:         folder,
		Name:           r.URL.Query().Get("name"),
		Payload:        body,
		Credential:     auth.ExtractCredential(r),
		APIKey:         auth.ExtractAPIKey(r),
		CandidateBases: identity.CandidateBases(st.ServerURL, r),
	})

	if !outcome.OK {
		writeOutcomeError(w, logger, outcome.Status, outcome.Kind, outcome.Message)
		return
	}

	writeJSON(w, logger, http.StatusOK, hostdrop.WriteResult{Path: outcome.Path})
}
