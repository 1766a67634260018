package storage

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hostdrop/hostdrop/internal/atomicfile"
	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
)

// backupDirName is the subdirectory holding prior snapshots of files in a
// folder, as backups/<file>.<timestamp>.bak siblings.
const backupDirName = "backups"

// backupTimestampFormat is UTC and lexically sortable, so pruning can order
// backups by name alone.
const backupTimestampFormat = "20060102T150405.000000000"

// backupStampPattern matches the timestamp segment of a backup name.
var backupStampPattern = regexp.MustCompile(`^\d{8}T\d{6}\.\d{9}$`)

// Writer performs crash-safe writes with backup rotation.
//
// Writes to the same canonical path serialize on a per-path mutex so two
// concurrent temp-file-and-rename sequences cannot race each other's backup
// rotation. Distinct paths proceed concurrently.
type Writer struct {
	locks  *xsync.MapOf[string, *sync.Mutex]
	logger *slog.Logger
}

// NewWriter creates a writer. If logger is nil, the default slog logger is used.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		locks:  xsync.NewMapOf[string, *sync.Mutex](),
		logger: logger,
	}
}

// Write persists data at path with backup rotation.
//
// When the target already exists and maxBackups > 0, the current content is
// first copied into the backups subdirectory and the subdirectory is pruned
// to the newest maxBackups snapshots for that file. Rewriting identical
// content is a no-op: the live file is untouched and no backup rotates.
// On any mid-sequence failure the original file remains intact.
func (w *Writer) Write(path string, data []byte, maxBackups int) error {
	canonical := filepath.Clean(path)

	mu, _ := w.locks.LoadOrStore(canonical, &sync.Mutex{})
	mu.Lock()
	defer mu.Unlock()

	existing, err := os.ReadFile(canonical)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return domainerrors.New("storage", "Write", domainerrors.ErrIO,
			fmt.Errorf("read existing file: %w", err)).WithContext("path", canonical)
	}

	if exists && bytes.Equal(existing, data) {
		w.logger.Debug("write skipped, content unchanged", "path", canonical)
		return nil
	}

	if exists && maxBackups > 0 {
		if err := w.backup(canonical, existing, maxBackups); err != nil {
			return err
		}
	}

	if err := atomicfile.ReplaceFile(canonical, data); err != nil {
		return domainerrors.New("storage", "Write", domainerrors.ErrIO, err).
			WithContext("path", canonical)
	}

	w.logger.Debug("file written", "path", canonical, "bytes", len(data))
	return nil
}

// backup snapshots the current content of path and prunes older snapshots.
func (w *Writer) backup(path string, content []byte, maxBackups int) error {
	dir := filepath.Join(filepath.Dir(path), backupDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domainerrors.New("storage", "backup", domainerrors.ErrIO,
			fmt.Errorf("create backup directory: %w", err))
	}

	base := filepath.Base(path)
	stamp := time.Now().UTC().Format(backupTimestampFormat)
	name := base + "." + stamp + ".bak"
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return domainerrors.New("storage", "backup", domainerrors.ErrIO,
			fmt.Errorf("write backup: %w", err)).WithContext("backup", name)
	}

	w.prune(dir, base, maxBackups)
	return nil
}

// prune deletes all but the newest maxBackups snapshots of base. Pruning is
// best-effort: a leftover backup is harmless and the write must not fail
// because of it.
func (w *Writer) prune(dir, base string, maxBackups int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("cannot read backup directory", "dir", dir, "error", err)
		return
	}

	// Only names shaped exactly like base.<timestamp>.bak belong to this
	// file; a sibling file whose own name extends base produces backups
	// with a longer middle and must not count against this retention set.
	prefix := base + "."
	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".bak") {
			continue
		}
		middle := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".bak")
		if backupStampPattern.MatchString(middle) {
			backups = append(backups, name)
		}
	}

	// Names embed a sortable timestamp; newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))

	keep := maxBackups
	if keep > len(backups) {
		keep = len(backups)
	}
	for _, name := range backups[keep:] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			w.logger.Warn("cannot prune backup", "backup", name, "error", err)
		}
	}
}
