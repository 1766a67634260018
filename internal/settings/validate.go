package settings

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
)

// folderTokenPattern is the grammar for folder names and relative paths:
// a single filesystem-safe path segment with no separators and no dots.
var folderTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validate is the singleton validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Tag for the folder token grammar; used by FolderEntry fields.
	if err := validate.RegisterValidation("foldertoken", func(fl validator.FieldLevel) bool {
		return folderTokenPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register foldertoken validation: %v", err))
	}
}

// IsFolderToken reports whether name matches the folder token grammar.
func IsFolderToken(name string) bool {
	return folderTokenPattern.MatchString(name)
}

// Validate checks a settings document against all invariants.
//
// Struct tag validation covers per-field rules; custom rules cover the
// cross-field invariants (case-insensitive uniqueness of folder names and
// relative paths) and the ServerURL scheme restriction, which cannot be
// expressed in tags. Rejections come back as validation-kind domain errors.
func Validate(s *Settings) error {
	if s == nil {
		return domainerrors.New("settings", "Validate", domainerrors.ErrValidation,
			fmt.Errorf("settings document cannot be nil"))
	}

	if err := validate.Struct(s); err != nil {
		return domainerrors.New("settings", "Validate", domainerrors.ErrValidation,
			formatValidationError(err))
	}

	if err := validateCustomRules(s); err != nil {
		return domainerrors.New("settings", "Validate", domainerrors.ErrValidation, err)
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(s *Settings) error {
	if s.ServerURL != "" {
		parsed, err := url.Parse(s.ServerURL)
		if err != nil {
			return fmt.Errorf("serverUrl: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("serverUrl: scheme must be http or https")
		}
		if parsed.Host == "" {
			return fmt.Errorf("serverUrl: host is required")
		}
	}

	names := make(map[string]bool, len(s.Folders))
	paths := make(map[string]bool, len(s.Folders))
	for i, folder := range s.Folders {
		name := strings.ToLower(folder.Name)
		if names[name] {
			return fmt.Errorf("folders[%d]: duplicate folder name %q", i, folder.Name)
		}
		names[name] = true

		path := strings.ToLower(folder.RelativePath)
		if paths[path] {
			return fmt.Errorf("folders[%d]: duplicate relative path %q", i, folder.RelativePath)
		}
		paths[path] = true
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
