// Package settings manages the persisted settings document: the folder
// allow-list, API key, and write limits that gate every request.
//
// The document is loaded once at startup and replaced wholesale on save. The
// active snapshot is the single source of truth for all authorization and
// path decisions; readers get it through a lock-free atomic pointer and must
// treat it as immutable.
package settings

import (
	"strings"
)

// DefaultMaxPayloadBytes is the payload size limit applied when no document exists.
const DefaultMaxPayloadBytes = 10 << 20 // 10 MiB

// DefaultMaxBackups is the backup retention applied when no document exists.
const DefaultMaxBackups = 5

// Settings is the persisted settings document.
type Settings struct {
	// ServerURL optionally overrides the host identity service base URL.
	// When empty, candidates are derived from the inbound request and a
	// loopback default.
	ServerURL string `json:"serverUrl,omitempty"`

	// APIKey is the shared secret granting non-admin write access.
	// Empty means no key is configured and only administrators may write.
	APIKey string `json:"apiKey,omitempty"`

	// EnableNonAdminWrite globally enables API-key writes to folders that
	// opt in with their own AllowNonAdminWrite flag.
	EnableNonAdminWrite bool `json:"enableNonAdminWrite"`

	// MaxPayloadBytes caps the size of a single write. Minimum 1024.
	MaxPayloadBytes int64 `json:"maxPayloadBytes" validate:"min=1024"`

	// MaxBackups is how many prior snapshots of a file are retained.
	// Zero disables backups.
	MaxBackups int `json:"maxBackups" validate:"min=0"`

	// Folders is the ordered folder allow-list.
	Folders []FolderEntry `json:"folders" validate:"dive"`
}

// FolderEntry describes one logical folder inside the sandbox root.
type FolderEntry struct {
	// Name is the unique, case-insensitive logical name clients address.
	Name string `json:"name" validate:"required,foldertoken"`

	// RelativePath is the single path segment under the sandbox root the
	// folder maps to. Unique case-insensitively.
	RelativePath string `json:"relativePath" validate:"required,foldertoken"`

	// AllowNonAdminWrite opts this folder into API-key writes when the
	// global EnableNonAdminWrite flag is also set.
	AllowNonAdminWrite bool `json:"allowNonAdminWrite"`

	// Description is free-form operator documentation.
	Description string `json:"description,omitempty"`
}

// Default returns the settings used when no document exists on disk.
func Default() *Settings {
	return &Settings{
		MaxPayloadBytes: DefaultMaxPayloadBytes,
		MaxBackups:      DefaultMaxBackups,
	}
}

// FindFolder returns the folder whose Name or RelativePath equals name,
// case-insensitively, or nil when no folder matches.
func (s *Settings) FindFolder(name string) *FolderEntry {
	for i := range s.Folders {
		f := &s.Folders[i]
		if strings.EqualFold(f.Name, name) || strings.EqualFold(f.RelativePath, name) {
			return f
		}
	}
	return nil
}

// Clone returns a deep copy suitable for mutation before a Save.
func (s *Settings) Clone() *Settings {
	next := *s
	next.Folders = make([]FolderEntry, len(s.Folders))
	copy(next.Folders, s.Folders)
	return &next
}
