// Package routes declares HTTP endpoints as data and registers them on a
// ServeMux using method-qualified patterns.
package routes

import "net/http"

// Route binds an HTTP method and path pattern to a handler. Pattern is
// relative to the enclosing group and may be empty.
type Route struct {
	Method  string
	Pattern string
	Summary string
	Handler http.HandlerFunc
}

// Endpoint is a registered route with its full path.
type Endpoint struct {
	Method  string
	Path    string
	Summary string
	Tag     string
}

// Pattern returns the ServeMux pattern, e.g. "GET /agents/{name}".
func (e Endpoint) Pattern() string {
	return e.Method + " " + e.Path
}
