package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainerrors "github.com/hostdrop/hostdrop/internal/errors"
	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// identityServer returns a test server answering /Users/Me with body when the
// expected credential is presented, and 401 otherwise.
func identityServer(t *testing.T, credential, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Users/Me" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get(hostdrop.HeaderEmbyToken) != credential {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPValidator_AdminFromPolicy(t *testing.T) {
	t.Parallel()

	server := identityServer(t, "tok",
		`{"Id":"u1","Name":"alice","Policy":{"IsAdministrator":true}}`)

	v := NewHTTPValidator(2*time.Second, nil)
	id, err := v.Validate(context.Background(), "tok", []string{server.URL})
	if err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if id.UserID != "u1" || id.Name != "alice" || !id.Admin {
		t.Errorf("identity = %+v, want admin u1/alice", id)
	}
}

func TestHTTPValidator_AdminFromRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantAdmin bool
	}{
		{
			name:      "administrator role",
			body:      `{"Id":"u2","Roles":["User","administrator"]}`,
			wantAdmin: true,
		},
		{
			name:      "no administrator role",
			body:      `{"Id":"u3","Roles":["User"]}`,
			wantAdmin: false,
		},
		{
			name:      "policy wins over roles",
			body:      `{"Id":"u4","Policy":{"IsAdministrator":false},"Roles":["Administrator"]}`,
			wantAdmin: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := identityServer(t, "tok", tt.body)
			v := NewHTTPValidator(2*time.Second, nil)
			id, err := v.Validate(context.Background(), "tok", []string{server.URL})
			if err != nil {
				t.Fatalf("Validate() = %v", err)
			}
			if id.Admin != tt.wantAdmin {
				t.Errorf("Admin = %v, want %v", id.Admin, tt.wantAdmin)
			}
		})
	}
}

func TestHTTPValidator_SecondCandidateAfterConnectionFailure(t *testing.T) {
	t.Parallel()

	// A server that is already closed gives a connection refused on probe.
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	server := identityServer(t, "tok", `{"Id":"u1","Policy":{"IsAdministrator":true}}`)

	v := NewHTTPValidator(2*time.Second, nil)
	id, err := v.Validate(context.Background(), "tok", []string{deadURL, server.URL})
	if err != nil {
		t.Fatalf("Validate() should fall through to the second candidate, got %v", err)
	}
	if id.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", id.UserID)
	}
}

func TestHTTPValidator_HTMLBodyAdvancesCandidate(t *testing.T) {
	t.Parallel()

	// Wrong-base lookalike: answers 200 with an HTML fallback page.
	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("\n  <!DOCTYPE html><html><body>not here</body></html>"))
	}))
	t.Cleanup(html.Close)

	server := identityServer(t, "tok", `{"Id":"u9"}`)

	v := NewHTTPValidator(2*time.Second, nil)
	id, err := v.Validate(context.Background(), "tok", []string{html.URL, server.URL})
	if err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if id.UserID != "u9" {
		t.Errorf("UserID = %q, want u9", id.UserID)
	}
}

func TestHTTPValidator_Exhaustion(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	v := NewHTTPValidator(500*time.Millisecond, nil)
	id, err := v.Validate(context.Background(), "tok", []string{deadURL})
	if id != nil {
		t.Errorf("identity = %+v, want nil", id)
	}
	if !errors.Is(err, domainerrors.ErrNetwork) {
		t.Errorf("error should be ErrNetwork, got %v", err)
	}
}

func TestHTTPValidator_BadCredentialIsNoIdentity(t *testing.T) {
	t.Parallel()

	server := identityServer(t, "good", `{"Id":"u1"}`)

	v := NewHTTPValidator(2*time.Second, nil)
	id, err := v.Validate(context.Background(), "bad", []string{server.URL})
	if id != nil {
		t.Errorf("identity = %+v, want nil for a rejected credential", id)
	}
	if err == nil {
		t.Error("Validate() should report candidate exhaustion")
	}
}

func TestHTTPValidator_EmptyCredential(t *testing.T) {
	t.Parallel()

	v := NewHTTPValidator(time.Second, nil)
	id, err := v.Validate(context.Background(), "", []string{DefaultBase})
	if id != nil {
		t.Errorf("identity = %+v, want nil", id)
	}
	if !errors.Is(err, domainerrors.ErrAuthentication) {
		t.Errorf("error should be ErrAuthentication, got %v", err)
	}
}
