// Package transport provides the HTTP layer: server lifecycle, routing,
// middleware, and the wiring that connects handlers to the write pipeline.
package transport

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler
