// Package openapi builds a minimal OpenAPI 3.1 document from registered
// endpoints so clients can discover the HTTP surface.
package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var pathParam = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(?:\.\.\.)?\}`)

// errorResponse mirrors handlers.RespondError bodies.
var errorResponse = &Response{
	Description: "Error",
	Content: map[string]*MediaType{
		"application/json": {Schema: &Schema{
			Type: "object",
			Properties: map[string]*Schema{
				"error": {Type: "string"},
			},
		}},
	},
}

// Spec is an OpenAPI 3.1 document.
type Spec struct {
	OpenAPI string               `json:"openapi"`
	Info    *Info                `json:"info"`
	Servers []*Server            `json:"servers,omitempty"`
	Paths   map[string]*PathItem `json:"paths"`
}

// NewSpec creates an empty document.
func NewSpec(title, version, description string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info:    &Info{Title: title, Version: version, Description: description},
		Paths:   make(map[string]*PathItem),
	}
}

// AddServer appends a server URL.
func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

// Add documents method on path. Path parameters are taken from ServeMux
// wildcards; "{$}" anchors are dropped.
func (s *Spec) Add(method, path, summary, tag string) error {
	path = strings.TrimSuffix(path, "{$}")
	if path == "" {
		path = "/"
	}

	op := &Operation{
		OperationID: operationID(method, path),
		Summary:     summary,
		Responses: map[string]*Response{
			"200":     {Description: "Success"},
			"default": errorResponse,
		},
	}
	if tag != "" {
		op.Tags = []string{tag}
	}
	for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
		op.Parameters = append(op.Parameters, &Parameter{
			Name:     m[1],
			In:       "path",
			Required: true,
			Schema:   &Schema{Type: "string"},
		})
	}
	path = pathParam.ReplaceAllString(path, "{$1}")

	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
		s.Paths[path] = item
	}

	switch strings.ToUpper(method) {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	default:
		return fmt.Errorf("openapi: unsupported method %q on %s", method, path)
	}
	return nil
}

// Handler serves the document as JSON. The document is serialized once.
func (s *Spec) Handler() (http.Handler, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal: %w", err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}), nil
}

func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for seg := range strings.SplitSeq(path, "/") {
		seg = strings.Trim(seg, "{}.")
		if seg == "" {
			continue
		}
		b.WriteString(strings.ToUpper(seg[:1]))
		b.WriteString(seg[1:])
	}
	return b.String()
}
