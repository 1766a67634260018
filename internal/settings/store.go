package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/hostdrop/hostdrop/internal/atomicfile"
	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
)

// Store owns the settings document on disk and its in-memory snapshot.
//
// Reads are lock-free after Load. Save holds a single lock for the whole
// validate-persist-ensure sequence so concurrent saves cannot interleave, and
// persists the document with the same atomic-replace discipline as payload
// writes.
type Store struct {
	path     string
	dataRoot string
	logger   *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[Settings]
}

// NewStore creates a store for the document at path. dataRoot is the sandbox
// root under which folder directories are created on save. If logger is nil,
// the default slog logger is used.
func NewStore(path, dataRoot string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:     path,
		dataRoot: dataRoot,
		logger:   logger,
	}
}

// Load reads the document from disk, or installs defaults when no document
// exists yet. It also creates the sandbox root. Load must be called before
// Current or Save.
func (s *Store) Load() error {
	if err := os.MkdirAll(s.dataRoot, 0o755); err != nil {
		return domainerrors.New("settings", "Load", domainerrors.ErrIO,
			fmt.Errorf("create sandbox root: %w", err))
	}

	loaded, err := s.read()
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no settings document found, using defaults", "path", s.path)
			s.current.Store(Default())
			return nil
		}
		return err
	}

	s.current.Store(loaded)
	s.ensureFolders(loaded)
	return nil
}

// Current returns the active settings snapshot. The returned value must be
// treated as immutable; use Clone before mutating for a Save.
func (s *Store) Current() *Settings {
	return s.current.Load()
}

// Save validates next, persists it atomically, creates every folder directory
// best-effort, and swaps the active snapshot. A single folder's creation
// failure is logged and does not abort the save.
func (s *Store) Save(next *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := Validate(next); err != nil {
		return err
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return domainerrors.New("settings", "Save", domainerrors.ErrIO,
			fmt.Errorf("encode settings: %w", err))
	}

	if err := atomicfile.ReplaceFile(s.path, data); err != nil {
		return domainerrors.New("settings", "Save", domainerrors.ErrIO, err).
			WithContext("path", s.path)
	}

	s.ensureFolders(next)
	s.current.Store(next)

	s.logger.Info("settings saved",
		"path", s.path,
		"folders", len(next.Folders),
		"max_backups", next.MaxBackups,
	)
	return nil
}

// Watch starts reloading the document when it changes on disk, until ctx is
// cancelled. A document that fails to parse or validate keeps the current
// snapshot in place.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the containing directory: atomic replace swaps the inode out
	// from under a file-level watch.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				s.reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("settings watcher error", "error", err)
			}
		}
	}()

	return nil
}

// reload re-reads the document after an external edit.
func (s *Store) reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.read()
	if err != nil {
		s.logger.Warn("settings reload rejected, keeping current snapshot",
			"path", s.path,
			"error", err,
		)
		return
	}

	s.current.Store(loaded)
	s.logger.Info("settings reloaded", "path", s.path, "folders", len(loaded.Folders))
}

// read loads and validates the document from disk. The raw os error is
// preserved for not-exist checks by the caller.
func (s *Store) read() (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	loaded := Default()
	if err := json.Unmarshal(data, loaded); err != nil {
		return nil, domainerrors.New("settings", "Load", domainerrors.ErrValidation,
			fmt.Errorf("parse settings: %w", err))
	}

	if err := Validate(loaded); err != nil {
		return nil, err
	}

	return loaded, nil
}

// ensureFolders creates each folder's directory under the sandbox root.
// Entries that fail the token grammar are skipped; they cannot have passed
// validation, so this is defense against a hand-edited document.
func (s *Store) ensureFolders(st *Settings) {
	for _, folder := range st.Folders {
		if !IsFolderToken(folder.RelativePath) {
			s.logger.Warn("skipping folder with invalid relative path",
				"name", folder.Name,
				"relative_path", folder.RelativePath,
			)
			continue
		}
		dir := filepath.Join(s.dataRoot, folder.RelativePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Warn("failed to create folder directory",
				"name", folder.Name,
				"dir", dir,
				"error", err,
			)
		}
	}
}
