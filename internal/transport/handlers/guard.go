package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hostdrop/hostdrop/internal/auth"
	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/internal/identity"
	"github.com/hostdrop/hostdrop/internal/settings"
)

// Guard resolves the caller's identity and API key for admin-gated and
// admin-or-key endpoints.
type Guard struct {
	store     *settings.Store
	validator identity.Validator
	logger    *slog.Logger
}

// NewGuard creates a guard. store and validator are required.
func NewGuard(store *settings.Store, validator identity.Validator, logger *slog.Logger) *Guard {
	if store == nil {
		panic("store cannot be nil")
	}
	if validator == nil {
		panic("validator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{store: store, validator: validator, logger: logger}
}

// Identity validates the request's credential against the host. Returns nil
// when there is no credential or validation fails; failure is soft here
// because some endpoints accept an API key instead.
func (g *Guard) Identity(r *http.Request) *identity.Identity {
	credential := auth.ExtractCredential(r)
	if credential == "" {
		return nil
	}

	st := g.store.Current()
	bases := identity.CandidateBases(st.ServerURL, r)
	id, err := g.validator.Validate(r.Context(), credential, bases)
	if err != nil {
		g.logger.Debug("identity validation failed", "error", err)
		return nil
	}
	return id
}

// RequireAdmin allows the request only for a validated administrator.
// On denial it writes the 401 response and returns nil.
func (g *Guard) RequireAdmin(w http.ResponseWriter, r *http.Request) *identity.Identity {
	id := g.Identity(r)
	if id == nil || !id.Admin {
		writeError(w, g.logger,
			domainerrors.New("transport", "RequireAdmin", domainerrors.ErrAuthorization, nil),
			"administrator access required")
		return nil
	}
	return id
}

// AllowAdminOrKey allows the request for a validated administrator or a
// caller presenting the configured API key. On denial it writes the 401
// response and returns false.
func (g *Guard) AllowAdminOrKey(w http.ResponseWriter, r *http.Request) bool {
	if id := g.Identity(r); id != nil && id.Admin {
		return true
	}

	st := g.store.Current()
	if auth.KeyValid(auth.ExtractAPIKey(r), st.APIKey) {
		return true
	}

	writeError(w, g.logger,
		domainerrors.New("transport", "AllowAdminOrKey", domainerrors.ErrAuthorization, nil),
		"administrator access or a valid api key required")
	return false
}
