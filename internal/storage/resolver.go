// Package storage maps logical folder names to sandboxed directories and
// performs crash-safe writes with bounded backup retention.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/internal/settings"
)

// fileNamePattern is the grammar for file names: word characters, dots, and
// dashes. Separators cannot appear, so a valid name is always a single path
// segment; dot-only names are rejected separately.
var fileNamePattern = regexp.MustCompile(`^[\w.-]+$`)

// dotsOnlyPattern matches names like "." and ".." that pass the file name
// grammar but would escape or alias the directory.
var dotsOnlyPattern = regexp.MustCompile(`^\.+$`)

// Resolver maps folder names to absolute directories under a single sandbox
// root. Traversal outside the root is impossible by construction: only a
// validated single path segment is ever joined onto the root, and the result
// is re-checked to be a direct child.
type Resolver struct {
	root string
}

// NewResolver creates a resolver sandboxed to dataDir, creating it if absent.
func NewResolver(dataDir string) (*Resolver, error) {
	root, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, domainerrors.New("storage", "NewResolver", domainerrors.ErrIO,
			fmt.Errorf("resolve sandbox root: %w", err))
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, domainerrors.New("storage", "NewResolver", domainerrors.ErrIO,
			fmt.Errorf("create sandbox root: %w", err))
	}
	return &Resolver{root: root}, nil
}

// Root returns the absolute sandbox root, the target of global writes.
func (r *Resolver) Root() string {
	return r.root
}

// ResolveFolder maps a logical folder name to its absolute directory,
// creating the directory if absent.
//
// The name must match the folder token grammar and must be the Name or
// RelativePath of a configured folder (case-insensitive). The entry's own
// RelativePath is validated again before joining, as defense against a
// hand-corrupted settings document.
func (r *Resolver) ResolveFolder(st *settings.Settings, name string) (string, error) {
	if !settings.IsFolderToken(name) {
		return "", domainerrors.New("storage", "ResolveFolder", domainerrors.ErrValidation,
			fmt.Errorf("invalid folder name %q", name))
	}

	folder := st.FindFolder(name)
	if folder == nil {
		return "", domainerrors.New("storage", "ResolveFolder", domainerrors.ErrValidation,
			fmt.Errorf("unknown folder %q", name))
	}

	if !settings.IsFolderToken(folder.RelativePath) {
		return "", domainerrors.New("storage", "ResolveFolder", domainerrors.ErrValidation,
			fmt.Errorf("folder %q has an invalid relative path", folder.Name))
	}

	return r.ensureChild(folder.RelativePath)
}

// EnsureDir creates the directory for a single relative path segment under
// the sandbox root. Used by folder creation, which may precede a settings
// entry for the folder.
func (r *Resolver) EnsureDir(relative string) (string, error) {
	if !settings.IsFolderToken(relative) {
		return "", domainerrors.New("storage", "EnsureDir", domainerrors.ErrValidation,
			fmt.Errorf("invalid relative path %q", relative))
	}
	return r.ensureChild(relative)
}

// PreviewPath reports where a relative folder path would land under the
// sandbox root, without creating anything.
func (r *Resolver) PreviewPath(relative string) (string, error) {
	if !settings.IsFolderToken(relative) {
		return "", domainerrors.New("storage", "PreviewPath", domainerrors.ErrValidation,
			fmt.Errorf("invalid relative path %q", relative))
	}

	dir := filepath.Join(r.root, relative)
	if filepath.Dir(filepath.Clean(dir)) != r.root {
		return "", domainerrors.New("storage", "PreviewPath", domainerrors.ErrValidation,
			fmt.Errorf("resolved path %q escapes the sandbox root", dir))
	}

	return dir, nil
}

// ensureChild joins a validated segment onto the root, creates it, and
// enforces the direct-child invariant on the canonicalized result.
func (r *Resolver) ensureChild(segment string) (string, error) {
	dir := filepath.Join(r.root, segment)

	// Final invariant check: the canonicalized path's parent must be exactly
	// the sandbox root. The grammar checks above already exclude separators
	// and traversal, so a failure here means a bug, not bad input.
	if filepath.Dir(filepath.Clean(dir)) != r.root {
		return "", domainerrors.New("storage", "ensureChild", domainerrors.ErrValidation,
			fmt.Errorf("resolved path %q escapes the sandbox root", dir))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domainerrors.New("storage", "ensureChild", domainerrors.ErrIO,
			fmt.Errorf("create directory: %w", err)).WithContext("dir", dir)
	}

	return dir, nil
}

// ValidateFileName checks a target file name against the file name grammar.
func ValidateFileName(name string) error {
	if !fileNamePattern.MatchString(name) || dotsOnlyPattern.MatchString(name) {
		return domainerrors.New("storage", "ValidateFileName", domainerrors.ErrValidation,
			fmt.Errorf("invalid file name %q", name))
	}
	return nil
}

// FilePath validates name and joins it onto dir.
func FilePath(dir, name string) (string, error) {
	if err := ValidateFileName(name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
