// Package service coordinates one write request end to end: credential
// extraction results, identity validation, the authorization decision, path
// resolution, the size limit, and the crash-safe write.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hostdrop/hostdrop/internal/auth"
	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/internal/identity"
	"github.com/hostdrop/hostdrop/internal/settings"
	"github.com/hostdrop/hostdrop/internal/storage"
)

// WriteRequest carries everything one inbound write needs. It is ephemeral,
// one per call.
type WriteRequest struct {
	// Folder is the logical target folder. Empty means the sandbox root.
	Folder string

	// Name is the target file name.
	Name string

	// Payload is the raw content to persist.
	Payload []byte

	// Credential is the caller's bearer credential, or "".
	Credential string

	// APIKey is the caller's provided API key, or "".
	APIKey string

	// CandidateBases are the identity endpoint candidates derived for this
	// request, in probe order.
	CandidateBases []string
}

// Outcome is the typed result of a write. No failure in the pipeline
// escapes as a panic or an untyped error; everything lands here.
type Outcome struct {
	// OK reports success.
	OK bool

	// Path is the absolute path written, set on success.
	Path string

	// Status is the HTTP status the transport should respond with.
	Status int

	// Kind is the taxonomy sentinel for failures, nil on success.
	Kind error

	// Message is a short, non-sensitive description for the response body.
	Message string
}

// Orchestrator wires the write pipeline together. All collaborators are
// injected; the orchestrator holds no state of its own.
type Orchestrator struct {
	store     *settings.Store
	validator identity.Validator
	issuer    *auth.TokenIssuer
	resolver  *storage.Resolver
	writer    *storage.Writer
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator. All collaborators except the
// logger are required.
func NewOrchestrator(
	store *settings.Store,
	validator identity.Validator,
	issuer *auth.TokenIssuer,
	resolver *storage.Resolver,
	writer *storage.Writer,
	logger *slog.Logger,
) *Orchestrator {
	if store == nil {
		panic("store cannot be nil")
	}
	if validator == nil {
		panic("validator cannot be nil")
	}
	if issuer == nil {
		panic("issuer cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if writer == nil {
		panic("writer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		store:     store,
		validator: validator,
		issuer:    issuer,
		resolver:  resolver,
		writer:    writer,
		logger:    logger,
	}
}

// Write runs the full pipeline for one request and always returns a typed
// outcome.
func (o *Orchestrator) Write(ctx context.Context, req WriteRequest) (outcome Outcome) {
	// The contract is that nothing escapes untyped, including a bug.
	defer func() {
		if recovered := recover(); recovered != nil {
			o.logger.Error("write pipeline panic", "panic", recovered)
			outcome = failure(domainerrors.New("service", "Write", domainerrors.ErrIO,
				fmt.Errorf("internal failure")), "internal failure")
		}
	}()

	st := o.store.Current()

	var folder *settings.FolderEntry
	if req.Folder != "" {
		if !settings.IsFolderToken(req.Folder) {
			return failure(domainerrors.New("service", "Write", domainerrors.ErrValidation, nil),
				fmt.Sprintf("invalid folder name %q", req.Folder))
		}
		folder = st.FindFolder(req.Folder)
		if folder == nil {
			return failure(domainerrors.New("service", "Write", domainerrors.ErrValidation, nil),
				fmt.Sprintf("unknown folder %q", req.Folder))
		}
	}

	// A credential that verifies as one of our own scoped tokens authorizes
	// exactly its folder; no remote validation is needed. Tokens carry the
	// folder's logical name, so the request folder is resolved to its entry
	// first and either of the entry's names addresses the same grant.
	scopedFolder, isScoped := o.verifyScoped(req.Credential)
	if isScoped && (folder == nil || !strings.EqualFold(scopedFolder, folder.Name)) {
		return failure(domainerrors.New("service", "Write", domainerrors.ErrAuthorization, nil),
			"token is not scoped to this folder")
	}

	var caller *identity.Identity
	if !isScoped && req.Credential != "" {
		id, err := o.validator.Validate(ctx, req.Credential, req.CandidateBases)
		if err != nil {
			// Soft failure: the request may still carry a valid API key.
			o.logger.Debug("identity validation failed", "error", err)
		}
		caller = id
	}

	if !isScoped {
		keyValid := auth.KeyValid(req.APIKey, st.APIKey)
		decision := auth.Decide(caller, keyValid, st, folder)
		if !decision.Allowed {
			o.logger.Info("write denied",
				"folder", req.Folder,
				"name", req.Name,
				"reason", decision.Reason,
			)
			return failure(domainerrors.New("service", "Write", domainerrors.ErrAuthorization, nil),
				decision.Reason)
		}
	}

	dir := o.resolver.Root()
	if folder != nil {
		resolved, err := o.resolver.ResolveFolder(st, req.Folder)
		if err != nil {
			return failure(err, "cannot resolve folder")
		}
		dir = resolved
	}

	if int64(len(req.Payload)) > st.MaxPayloadBytes {
		return failure(domainerrors.New("service", "Write", domainerrors.ErrPayloadTooLarge, nil),
			fmt.Sprintf("payload exceeds the %d byte limit", st.MaxPayloadBytes))
	}

	path, err := storage.FilePath(dir, req.Name)
	if err != nil {
		return failure(err, fmt.Sprintf("invalid file name %q", req.Name))
	}

	if err := o.writer.Write(path, req.Payload, st.MaxBackups); err != nil {
		// Full detail stays server-side; the caller gets a generic failure.
		o.logger.Error("write failed",
			"path", path,
			"error", err,
		)
		return failure(err, "write failed")
	}

	o.logger.Info("payload written",
		"path", path,
		"bytes", len(req.Payload),
		"folder", req.Folder,
	)

	return Outcome{
		OK:     true,
		Path:   path,
		Status: http.StatusOK,
	}
}

// verifyScoped reports whether credential is a valid scoped write token and,
// if so, which folder it grants.
func (o *Orchestrator) verifyScoped(credential string) (string, bool) {
	if credential == "" {
		return "", false
	}
	folder, err := o.issuer.Verify(credential)
	if err != nil {
		return "", false
	}
	return folder, true
}

// failure converts a pipeline error into an Outcome.
func failure(err error, message string) Outcome {
	return Outcome{
		OK:      false,
		Status:  domainerrors.StatusCode(err),
		Kind:    domainerrors.KindOf(err),
		Message: message,
	}
}
