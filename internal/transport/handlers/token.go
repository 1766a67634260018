package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hostdrop/hostdrop/internal/auth"
	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/internal/settings"
	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// tokenRequest is the JSON body for minting a scoped write token.
type tokenRequest struct {
	Folder string `json:"folder"`
}

// tokenHandler mints folder-scoped write tokens. Admin-or-key.
type tokenHandler struct {
	store  *settings.Store
	issuer *auth.TokenIssuer
	guard  *Guard
	logger *slog.Logger
}

// NewTokenHandler creates the handler for scoped token minting.
func NewTokenHandler(store *settings.Store, issuer *auth.TokenIssuer, guard *Guard, logger *slog.Logger) http.Handler {
	if store == nil {
		panic("store cannot be nil")
	}
	if issuer == nil {
		panic("issuer cannot be nil")
	}
	if guard == nil {
		panic("guard cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tokenHandler{store: store, issuer: issuer, guard: guard, logger: logger}
}

func (h *tokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.guard.AllowAdminOrKey(w, r) {
		return
	}

	st := h.store.Current()

	var req tokenRequest
	if !decodeBody(w, r, h.logger, "token", st.MaxPayloadBytes, &req) {
		return
	}

	// Tokens are only minted for folders that exist in the settings.
	folder := st.FindFolder(req.Folder)
	if folder == nil {
		writeError(w, h.logger,
			domainerrors.New("transport", "token", domainerrors.ErrValidation, nil),
			fmt.Sprintf("unknown folder %q", req.Folder))
		return
	}

	token, expiresAt, err := h.issuer.Issue(folder.Name)
	if err != nil {
		writeError(w, h.logger, err, "cannot issue token")
		return
	}

	h.logger.Info("scoped token issued",
		"folder", folder.Name,
		"expires_at", expiresAt,
	)
	writeJSON(w, h.logger, http.StatusOK, hostdrop.ScopedToken{
		Token:     token,
		Folder:    folder.Name,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
