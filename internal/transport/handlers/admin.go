package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hostdrop/hostdrop/internal/settings"
	"github.com/hostdrop/hostdrop/internal/storage"
	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// resolvePathHandler previews where a relative folder path would land inside
// the sandbox, without creating anything. Admin-gated.
type resolvePathHandler struct {
	resolver *storage.Resolver
	guard    *Guard
	logger   *slog.Logger
}

// NewResolvePathHandler creates the handler for path previews.
func NewResolvePathHandler(resolver *storage.Resolver, guard *Guard, logger *slog.Logger) http.Handler {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if guard == nil {
		panic("guard cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &resolvePathHandler{resolver: resolver, guard: guard, logger: logger}
}

func (h *resolvePathHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.guard.RequireAdmin(w, r) == nil {
		return
	}

	relative := r.URL.Query().Get("relative")
	path, err := h.resolver.PreviewPath(relative)
	if err != nil {
		writeError(w, h.logger, err, fmt.Sprintf("cannot resolve %q", relative))
		return
	}

	writeJSON(w, h.logger, http.StatusOK, hostdrop.ResolvedPath{Path: path})
}

// createFolderRequest is the JSON body for folder creation.
type createFolderRequest struct {
	RelativePath string `json:"relativePath"`
}

// createFolderHandler creates a directory under the sandbox root, ahead of a
// settings entry for it. Admin-or-key.
type createFolderHandler struct {
	store    *settings.Store
	resolver *storage.Resolver
	guard    *Guard
	logger   *slog.Logger
}

// NewCreateFolderHandler creates the handler for folder creation.
func NewCreateFolderHandler(store *settings.Store, resolver *storage.Resolver, guard *Guard, logger *slog.Logger) http.Handler {
	if store == nil {
		panic("store cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if guard == nil {
		panic("guard cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &createFolderHandler{store: store, resolver: resolver, guard: guard, logger: logger}
}

func (h *createFolderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.guard.AllowAdminOrKey(w, r) {
		return
	}

	var req createFolderRequest
	if !decodeBody(w, r, h.logger, "createFolder", h.store.Current().MaxPayloadBytes, &req) {
		return
	}

	dir, err := h.resolver.EnsureDir(req.RelativePath)
	if err != nil {
		writeError(w, h.logger, err, fmt.Sprintf("cannot create folder %q", req.RelativePath))
		return
	}

	h.logger.Info("folder created", "dir", dir)
	writeJSON(w, h.logger, http.StatusOK, hostdrop.ResolvedPath{Path: dir})
}
