package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/internal/service"
	"github.com/hostdrop/hostdrop/internal/settings"
	"github.com/hostdrop/hostdrop/internal/storage"
	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// folderHandler serves folder-scoped operations: listing files, reading one
// back, and writing into the folder.
type folderHandler struct {
	store        *settings.Store
	resolver     *storage.Resolver
	orchestrator *service.Orchestrator
	logger       *slog.Logger
}

// NewFolderHandler creates the handler for folder operations.
func NewFolderHandler(
	store *settings.Store,
	resolver *storage.Resolver,
	orchestrator *service.Orchestrator,
	logger *slog.Logger,
) http.Handler {
	if store == nil {
		panic("store cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if orchestrator == nil {
		panic("orchestrator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &folderHandler{store: store, resolver: resolver, orchestrator: orchestrator, logger: logger}
}

func (h *folderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		writeError(w, h.logger,
			domainerrors.New("transport", "folder", domainerrors.ErrValidation, nil),
			"folder parameter is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.read(w, r, folder)
	case http.MethodPut, http.MethodPost:
		runWrite(w, r, h.store, h.orchestrator, h.logger, folder)
	default:
		w.Header().Set("Allow", "GET, PUT, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// read lists the folder, or streams one file back when name is given.
func (h *folderHandler) read(w http.ResponseWriter, r *http.Request, folder string) {
	st := h.store.Current()

	dir, err := h.resolver.ResolveFolder(st, folder)
	if err != nil {
		writeError(w, h.logger, err, fmt.Sprintf("cannot resolve folder %q", folder))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		files, err := storage.ListFiles(dir)
		if err != nil {
			writeError(w, h.logger, err, "cannot list folder")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, files)
		return
	}

	data, err := storage.ReadFile(dir, name)
	if err != nil {
		writeError(w, h.logger, err, fmt.Sprintf("cannot read %q", name))
		return
	}

	w.Header().Set(hostdrop.HeaderContentType, hostdrop.ContentTypeOctetStream)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write file response", "error", err)
	}
}
