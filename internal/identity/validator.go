package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// userEndpoint is the host's "current user" path, relative to a base URL.
const userEndpoint = "/Users/Me"

// maxIdentityBody bounds how much of a response body is read when probing a
// candidate. Real identity documents are a few KiB; anything larger is a
// fallback page from the wrong service.
const maxIdentityBody = 1 << 20

// Validator exchanges a credential for an identity.
type Validator interface {
	// Validate tries each candidate base in order and returns the first
	// identity the host produces. It returns (nil, error) when every
	// candidate is exhausted; the error is informational and must be
	// treated as "no identity", not as a hard failure.
	Validate(ctx context.Context, credential string, bases []string) (*Identity, error)
}

// HTTPValidator validates credentials over HTTP with a fixed per-candidate
// timeout. Candidates are probed sequentially, never in parallel, and never
// retried within a single request.
type HTTPValidator struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTTPValidator creates a validator with the given per-candidate timeout.
// If logger is nil, the default slog logger is used.
func NewHTTPValidator(timeout time.Duration, logger *slog.Logger) *HTTPValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPValidator{
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Validate implements Validator.
//
// A candidate is abandoned, and the next one tried, when the request fails at
// the network level, when the response status is not 200, or when the body is
// not the host's JSON identity document. The HTML check sniffs the first
// non-space byte rather than trusting the status code, because some hosts
// answer unknown paths with a 200 HTML fallback page.
func (v *HTTPValidator) Validate(ctx context.Context, credential string, bases []string) (*Identity, error) {
	if credential == "" {
		return nil, domainerrors.New("identity", "Validate", domainerrors.ErrAuthentication,
			fmt.Errorf("no credential presented"))
	}

	var lastErr error
	for _, base := range bases {
		id, err := v.probe(ctx, base, credential)
		if err != nil {
			lastErr = err
			v.logger.Debug("identity candidate failed",
				"base", base,
				"error", err,
			)
			continue
		}
		v.logger.Debug("identity validated",
			"base", base,
			"user_id", id.UserID,
			"admin", id.Admin,
		)
		return id, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate base URLs")
	}
	return nil, domainerrors.New("identity", "Validate", domainerrors.ErrNetwork, lastErr).
		WithContext("candidates", len(bases))
}

// probe issues the user lookup against a single candidate base.
func (v *HTTPValidator) probe(ctx context.Context, base, credential string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+userEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(hostdrop.HeaderEmbyToken, credential)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIdentityBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		// HTML means a different service answered at this base.
		return nil, fmt.Errorf("non-identity response (html) from %s", base)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, base)
	}

	var doc userDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode identity document: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("identity document from %s has no user id", base)
	}

	return doc.identity(), nil
}
