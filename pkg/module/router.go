package module

import (
	"net/http"
	"strings"
)

// Router dispatches on the first path segment to a mounted Module and
// falls back to a ServeMux for everything else (health checks, metrics).
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// Handle registers a fallback handler.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.native.Handle(pattern, h)
}

// HandleFunc registers a fallback handler function.
func (r *Router) HandleFunc(pattern string, h http.HandlerFunc) {
	r.native.HandleFunc(pattern, h)
}

// Mount routes requests under each module's prefix to it.
func (r *Router) Mount(modules ...*Module) {
	for _, m := range modules {
		r.modules[m.prefix] = m
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	if m, ok := r.modules[segment(req.URL.Path)]; ok {
		m.ServeHTTP(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}

func segment(path string) string {
	rest := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return "/" + rest
}
