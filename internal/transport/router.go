package transport

import "net/http"

// Router registers handlers on an http.ServeMux, wrapping each with the
// middleware registered before it.
type Router struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewRouter creates a router backed by http.ServeMux.
func NewRouter() *Router {
	return &Router{
		mux:         http.NewServeMux(),
		middlewares: make([]Middleware, 0),
	}
}

// Use applies middleware to all subsequent route registrations.
// Middleware is applied in the order registered.
func (r *Router) Use(middlewares ...Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
}

// Handle registers a handler for the given pattern, wrapped with all
// currently registered middleware.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, r.applyMiddleware(handler))
}

// HandleFunc registers a handler function for the given pattern.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// ServeHTTP implements http.Handler by delegating to the underlying ServeMux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// applyMiddleware wraps the handler in reverse order so the first middleware
// registered is the outermost layer.
func (r *Router) applyMiddleware(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
