package storage

import (
	"fmt"
	"os"
	"sort"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
)

// ListFiles returns the names of the regular files directly inside dir,
// sorted. The backups subdirectory and any dotfiles (including in-flight
// temp files) are excluded.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainerrors.New("storage", "ListFiles", domainerrors.ErrNotFound,
				fmt.Errorf("directory does not exist"))
		}
		return nil, domainerrors.New("storage", "ListFiles", domainerrors.ErrIO,
			fmt.Errorf("read directory: %w", err))
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if name == "" || name[0] == '.' {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// ReadFile reads a file previously written into the sandbox.
func ReadFile(dir, name string) ([]byte, error) {
	path, err := FilePath(dir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domainerrors.New("storage", "ReadFile", domainerrors.ErrNotFound,
				fmt.Errorf("file %q does not exist", name))
		}
		return nil, domainerrors.New("storage", "ReadFile", domainerrors.ErrIO,
			fmt.Errorf("read file: %w", err)).WithContext("path", path)
	}

	return data, nil
}
