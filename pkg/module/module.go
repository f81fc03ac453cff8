// Package module mounts prefix-scoped HTTP modules, each with its own
// middleware chain, beneath a single Router.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Module strips its prefix and serves the remainder through its handler
// wrapped in the module's middleware.
type Module struct {
	prefix  string
	handler http.Handler
	chain   []func(http.Handler) http.Handler

	once  sync.Once
	built http.Handler
}

// New creates a Module for a single-segment prefix such as "/api". It
// panics on an invalid prefix.
func New(prefix string, handler http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{prefix: prefix, handler: handler}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware; the first added runs outermost. Middleware added
// after the first request is ignored.
func (m *Module) Use(mw ...func(http.Handler) http.Handler) {
	m.chain = append(m.chain, mw...)
}

func (m *Module) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.once.Do(func() {
		h := m.handler
		for i := len(m.chain) - 1; i >= 0; i-- {
			h = m.chain[i](h)
		}
		m.built = h
	})
	m.built.ServeHTTP(w, strip(r, m.prefix))
}

func strip(r *http.Request, prefix string) *http.Request {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	if path == "" {
		path = "/"
	}

	r2 := r.Clone(r.Context())
	r2.URL = new(url.URL)
	*r2.URL = *r.URL
	r2.URL.Path = path
	r2.URL.RawPath = ""
	return r2
}

func validatePrefix(prefix string) error {
	switch {
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %q", prefix)
	case len(prefix) == 1 || strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be a single path segment: %q", prefix)
	}
	return nil
}
