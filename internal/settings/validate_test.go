package settings

import (
	"errors"
	"strings"
	"testing"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
)

// validSettings returns a valid document for testing.
// Tests can override specific fields as needed.
func validSettings() *Settings {
	return &Settings{
		ServerURL:           "http://127.0.0.1:8096",
		APIKey:              "k",
		EnableNonAdminWrite: true,
		MaxPayloadBytes:     2 << 20,
		MaxBackups:          5,
		Folders: []FolderEntry{
			{Name: "logs", RelativePath: "logs", AllowNonAdminWrite: true},
			{Name: "reports", RelativePath: "report-data"},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		settings    *Settings
		wantErr     bool
		errContains string
	}{
		{
			name:     "valid document",
			settings: validSettings(),
			wantErr:  false,
		},
		{
			name:        "nil document",
			settings:    nil,
			wantErr:     true,
			errContains: "nil",
		},
		{
			name: "empty server url is allowed",
			settings: func() *Settings {
				s := validSettings()
				s.ServerURL = ""
				return s
			}(),
			wantErr: false,
		},
		{
			name: "server url with unsupported scheme",
			settings: func() *Settings {
				s := validSettings()
				s.ServerURL = "ftp://example.com"
				return s
			}(),
			wantErr:     true,
			errContains: "scheme",
		},
		{
			name: "server url without host",
			settings: func() *Settings {
				s := validSettings()
				s.ServerURL = "http://"
				return s
			}(),
			wantErr:     true,
			errContains: "host",
		},
		{
			name: "payload limit below floor",
			settings: func() *Settings {
				s := validSettings()
				s.MaxPayloadBytes = 512
				return s
			}(),
			wantErr:     true,
			errContains: "min",
		},
		{
			name: "negative backup count",
			settings: func() *Settings {
				s := validSettings()
				s.MaxBackups = -1
				return s
			}(),
			wantErr:     true,
			errContains: "min",
		},
		{
			name: "zero backups is allowed",
			settings: func() *Settings {
				s := validSettings()
				s.MaxBackups = 0
				return s
			}(),
			wantErr: false,
		},
		{
			name: "folder name with path separator",
			settings: func() *Settings {
				s := validSettings()
				s.Folders[0].Name = "a/b"
				return s
			}(),
			wantErr:     true,
			errContains: "foldertoken",
		},
		{
			name: "relative path with traversal",
			settings: func() *Settings {
				s := validSettings()
				s.Folders[0].RelativePath = ".."
				return s
			}(),
			wantErr:     true,
			errContains: "foldertoken",
		},
		{
			name: "relative path with backslash",
			settings: func() *Settings {
				s := validSettings()
				s.Folders[1].RelativePath = `a\b`
				return s
			}(),
			wantErr:     true,
			errContains: "foldertoken",
		},
		{
			name: "empty folder name",
			settings: func() *Settings {
				s := validSettings()
				s.Folders[0].Name = ""
				return s
			}(),
			wantErr:     true,
			errContains: "required",
		},
		{
			name: "duplicate names differing only by case",
			settings: func() *Settings {
				s := validSettings()
				s.Folders[1].Name = "LOGS"
				return s
			}(),
			wantErr:     true,
			errContains: "duplicate folder name",
		},
		{
			name: "duplicate relative paths differing only by case",
			settings: func() *Settings {
				s := validSettings()
				s.Folders[1].RelativePath = "Logs"
				return s
			}(),
			wantErr:     true,
			errContains: "duplicate relative path",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.settings)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() should have failed")
				}
				if !errors.Is(err, domainerrors.ErrValidation) {
					t.Errorf("Validate() error should be ErrValidation, got %v", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error %q should contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestIsFolderToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"logs", true},
		{"report-data_2", true},
		{"A", true},
		{"", false},
		{"a/b", false},
		{`a\b`, false},
		{"..", false},
		{"a.b", false},
		{"a b", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsFolderToken(tt.name); got != tt.want {
				t.Errorf("IsFolderToken(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFindFolder(t *testing.T) {
	t.Parallel()

	s := validSettings()

	if got := s.FindFolder("LOGS"); got == nil || got.Name != "logs" {
		t.Errorf("FindFolder(LOGS) = %v, want the logs entry", got)
	}
	if got := s.FindFolder("Report-Data"); got == nil || got.Name != "reports" {
		t.Errorf("FindFolder by relative path = %v, want the reports entry", got)
	}
	if got := s.FindFolder("missing"); got != nil {
		t.Errorf("FindFolder(missing) = %v, want nil", got)
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	orig := validSettings()
	clone := orig.Clone()
	clone.Folders[0].Name = "changed"
	clone.APIKey = "other"

	if orig.Folders[0].Name != "logs" {
		t.Error("mutating the clone changed the original folder list")
	}
	if orig.APIKey != "k" {
		t.Error("mutating the clone changed the original key")
	}
}
