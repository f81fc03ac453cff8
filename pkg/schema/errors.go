package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("schema validation failed")

// Violation is a single field-level conformance failure.
// Path uses dotted field names with bracketed array indexes,
// e.g. "initiatives[1].title". The root value has an empty path.
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "$"
	}
	return fmt.Sprintf("%s: %s", path, v.Reason)
}

// ValidationError reports every violation found in a candidate value.
type ValidationError struct {
	Schema     string      `json:"schema,omitempty"`
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}

	prefix := ErrValidation.Error()
	if e.Schema != "" {
		prefix = fmt.Sprintf("%s (%s)", prefix, e.Schema)
	}
	return fmt.Sprintf("%s: %s", prefix, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the violation paths in report order.
func (e *ValidationError) Fields() []string {
	paths := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		paths[i] = v.Path
	}
	return paths
}

// Has reports whether any violation names path.
func (e *ValidationError) Has(path string) bool {
	for _, v := range e.Violations {
		if v.Path == path {
			return true
		}
	}
	return false
}
