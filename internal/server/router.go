package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router is a chi-backed router that mounts [Handler] implementations under a path prefix.
type Router struct {
	mux    *chi.Mux
	prefix string
}

// NewRouter creates a new [Router] with request ids, the given global middleware and panic recovery.
//
// chi rejects middleware added after routes, so every global [Middleware] is passed here.
// The recoverer sits inside the global middleware so a request logger sees recovered panics as 500s.
// prefix is normalized to start with "/" and have no trailing slash; "" and "/" mount at the root.
func NewRouter(prefix string, middlewares ...Middleware) *Router {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	for _, m := range middlewares {
		mux.Use(m)
	}
	mux.Use(Recoverer(nil))

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, http.StatusNotFound, "Route not found.", nil)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		RespondError(w, http.StatusMethodNotAllowed, "Method not allowed.", nil)
	})

	return &Router{mux: mux, prefix: normalizePrefix(prefix)}
}

// Handle registers a handler for the specified HTTP method and path, outside the prefix.
func (r *Router) Handle(method, path string, handler http.Handler) {
	r.mux.Method(method, path, handler)
}

// Handler mounts a [Handler] under the router prefix, wrapped with the given middleware.
//
// Middleware is applied in the order given (first wraps outermost).
func (r *Router) Handler(handler Handler, middlewares ...Middleware) {
	r.mux.Route(r.prefix, func(sub chi.Router) {
		for _, m := range middlewares {
			sub.Use(m)
		}
		handler.Routes(sub)
	})
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
