// Package atomicfile provides the crash-safe file replacement primitive shared
// by the settings store and the payload writer.
//
// Data is written to a uniquely named temporary file in the same directory as
// the target, which guarantees same-filesystem rename semantics, then renamed
// over the target. Readers always observe either the old content or the
// complete new content.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ReplaceFile atomically replaces the file at path with data.
//
// On failure the original file, if any, remains intact and the temporary file
// is removed best-effort. On platforms where renaming over an existing file
// fails, a remove-then-rename fallback is taken; that fallback is a degraded
// mode and is not crash-safe, since a crash between the remove and the rename
// loses the previous content.
func ReplaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp-"+uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}

	// Flush to stable storage before the rename so the rename never
	// publishes a file whose content is still in the page cache only.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			// Degraded fallback for platforms that refuse to rename over an
			// existing file.
			if removeErr := os.Remove(path); removeErr == nil {
				if renameErr := os.Rename(tmp, path); renameErr == nil {
					return nil
				}
			}
		}
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
