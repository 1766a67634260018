// Package auth covers credential extraction, API key comparison, folder-scoped
// write tokens, and the authorization decision that gates every write.
package auth

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/hostdrop/hostdrop/pkg/hostdrop"
)

// tokenAttrPattern matches a vendor-style Token="..." attribute embedded
// anywhere in an Authorization header value, e.g.
// `MediaBrowser Client="x", Token="abc123"`.
var tokenAttrPattern = regexp.MustCompile(`(?i)token="([^"]+)"`)

// ExtractCredential pulls the bearer credential from a request, or returns ""
// when none is present.
//
// Priority order: the Authorization header (either a Bearer scheme or an
// embedded Token="..." attribute), the primary vendor token header, the legacy
// vendor token header, then the token query parameter. The first match wins.
// The credential is not validated here; it is only located.
func ExtractCredential(r *http.Request) string {
	if header := r.Header.Get(hostdrop.HeaderAuthorization); header != "" {
		if token := fromAuthorizationHeader(header); token != "" {
			return token
		}
	}

	if token := r.Header.Get(hostdrop.HeaderEmbyToken); token != "" {
		return token
	}

	if token := r.Header.Get(hostdrop.HeaderMediaBrowserToken); token != "" {
		return token
	}

	return r.URL.Query().Get(hostdrop.QueryToken)
}

// fromAuthorizationHeader extracts a credential from an Authorization value.
func fromAuthorizationHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], hostdrop.BearerScheme) {
		if token := strings.TrimSpace(parts[1]); token != "" {
			return token
		}
	}

	if match := tokenAttrPattern.FindStringSubmatch(header); match != nil {
		return match[1]
	}

	return ""
}
