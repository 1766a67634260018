package identity

import (
	"net/http"
	"strings"
)

// DefaultBase is the loopback host base URL tried when every other candidate
// is absent or fails.
const DefaultBase = "http://127.0.0.1:8096"

// Forwarding headers honored when deriving a candidate from the request.
const (
	headerForwardedProto  = "X-Forwarded-Proto"
	headerForwardedHost   = "X-Forwarded-Host"
	headerForwardedPrefix = "X-Forwarded-Prefix"
)

// CandidateBases returns the ordered candidate base URLs for identity
// validation: the configured override first, then a base derived from the
// inbound request's scheme, host, and forwarding headers, then the loopback
// default. Duplicates are dropped so a derived base equal to the override is
// only probed once.
func CandidateBases(override string, r *http.Request) []string {
	var bases []string
	add := func(base string) {
		base = strings.TrimRight(strings.TrimSpace(base), "/")
		if base == "" {
			return
		}
		for _, existing := range bases {
			if strings.EqualFold(existing, base) {
				return
			}
		}
		bases = append(bases, base)
	}

	add(override)
	if r != nil {
		add(deriveFromRequest(r))
	}
	add(DefaultBase)

	return bases
}

// deriveFromRequest builds a candidate from the request the way a reverse
// proxy in front of the host would present it. Returns "" when the request
// carries no usable host.
func deriveFromRequest(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get(headerForwardedProto); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwarded := r.Header.Get(headerForwardedHost); forwarded != "" {
		host = forwarded
	}
	if host == "" {
		return ""
	}

	prefix := r.Header.Get(headerForwardedPrefix)
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	return scheme + "://" + host + prefix
}
