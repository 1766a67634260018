package auth

import (
	"testing"
	"time"
)

func testIssuer(t *testing.T, ttl time.Duration) *TokenIssuer {
	t.Helper()
	secret, err := NewRandomSecret()
	if err != nil {
		t.Fatalf("NewRandomSecret() = %v", err)
	}
	return NewTokenIssuer(secret, ttl)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t, time.Hour)

	token, expires, err := issuer.Issue("logs")
	if err != nil {
		t.Fatalf("Issue() = %v", err)
	}
	if remaining := time.Until(expires); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("expiry %v not about an hour out", expires)
	}

	folder, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() = %v", err)
	}
	if folder != "logs" {
		t.Errorf("folder = %q, want logs", folder)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t, -time.Minute)

	token, _, err := issuer.Issue("logs")
	if err != nil {
		t.Fatalf("Issue() = %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("Verify() should reject an expired token")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t, time.Hour)
	other := testIssuer(t, time.Hour)

	token, _, err := issuer.Issue("logs")
	if err != nil {
		t.Fatalf("Issue() = %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Error("Verify() should reject a token signed with a different secret")
	}
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t, time.Hour)

	tests := []string{
		"",
		"not-a-token",
		"a.b.c",
	}
	for _, token := range tests {
		if _, err := issuer.Verify(token); err == nil {
			t.Errorf("Verify(%q) should fail", token)
		}
	}
}
