package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// ExtractAPIKey pulls the provided API key from a request, or returns "" when
// none is present. The dedicated key header takes priority over the query
// parameter fallback.
func ExtractAPIKey(r *http.Request) string {
	if key := r.Header.Get(hostdrop.HeaderAPIKey); key != "" {
		return key
	}
	return r.URL.Query().Get(hostdrop.QueryAPIKey)
}

// KeyValid reports whether the provided key matches the configured key.
// The comparison is constant time. An empty configured key means no key is
// configured and nothing can match it.
func KeyValid(provided, configured string) bool {
	if provided == "" || configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) == 1
}
