// Package hostdrop provides shared wire constants and client-visible types
// for the hostdrop payload persistence service.
package hostdrop

// HTTP header names used for credential and API key transport.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderEmbyToken is the primary vendor token header accepted from host clients.
	HeaderEmbyToken = "X-Emby-Token"

	// HeaderMediaBrowserToken is the legacy vendor token header accepted from host clients.
	HeaderMediaBrowserToken = "X-MediaBrowser-Token"

	// HeaderAPIKey carries the configured API key for non-admin write access.
	HeaderAPIKey = "X-Hostdrop-Key"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
)

// Query parameter names accepted as header fallbacks.
const (
	// QueryToken is the query parameter fallback for the bearer credential.
	QueryToken = "token"

	// QueryAPIKey is the query parameter fallback for the API key.
	QueryAPIKey = "api_key"
)

// BearerScheme is the Authorization scheme for bearer credentials.
const BearerScheme = "Bearer"

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"

	// ContentTypeOctetStream is the application/octet-stream content type.
	ContentTypeOctetStream = "application/octet-stream"
)

// Route paths served by the transport layer.
const (
	// RouteConfig serves the persisted settings document.
	RouteConfig = "/api/config"

	// RouteWrite writes a file into the sandbox root.
	RouteWrite = "/api/write"

	// RouteFolder reads, lists, or writes files in a named folder.
	RouteFolder = "/api/folder"

	// RouteResolvePath previews the resolved absolute path for a folder name.
	RouteResolvePath = "/api/resolve-path"

	// RouteCreateFolder ensures a folder directory exists on disk.
	RouteCreateFolder = "/api/create-folder"

	// RouteToken mints a folder-scoped write token.
	RouteToken = "/api/token"

	// RouteHealth is the liveness endpoint.
	RouteHealth = "/health"
)

// WriteResult is the JSON body returned by a successful write.
type WriteResult struct {
	// Path is the absolute path the payload was written to.
	Path string `json:"path"`
}

// ResolvedPath is the JSON body returned by the resolve-path endpoint.
type ResolvedPath struct {
	// Path is the absolute directory the folder name resolves to.
	Path string `json:"path"`
}

// ScopedToken is the JSON body returned by the token endpoint.
type ScopedToken struct {
	// Token is the signed, folder-scoped write token.
	Token string `json:"token"`

	// Folder is the logical folder the token grants write access to.
	Folder string `json:"folder"`

	// ExpiresAt is the RFC 3339 expiry of the token.
	ExpiresAt string `json:"expiresAt"`
}

// ErrorBody is the JSON body returned for every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
