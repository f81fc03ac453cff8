package routes

import (
	"net/http"
	"strings"
)

// Group shares a path prefix across routes and nested groups.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux and returns the endpoints in
// declaration order. Each endpoint is tagged with its top-level prefix.
func Register(mux *http.ServeMux, groups ...Group) []Endpoint {
	var endpoints []Endpoint
	for _, g := range groups {
		tag := strings.TrimPrefix(g.Prefix, "/")
		g.walk("", func(r Route, path string) {
			e := Endpoint{Method: r.Method, Path: path, Summary: r.Summary, Tag: tag}
			mux.HandleFunc(e.Pattern(), r.Handler)
			endpoints = append(endpoints, e)
		})
	}
	return endpoints
}

func (g Group) walk(parent string, visit func(r Route, path string)) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		visit(r, prefix+r.Pattern)
	}
	for _, child := range g.Children {
		child.walk(prefix, visit)
	}
}
