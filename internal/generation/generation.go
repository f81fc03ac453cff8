// Package generation sends instructions and conversation turns to a
// language model and returns either opaque text or a structured value that
// has been validated against a declared schema.
package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/recon/pkg/schema"
)

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation sent to the model.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// User builds a user turn.
func User(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// Request describes a single generation.
//
// When Schema is set the provider is asked for constrained output keyed by
// the schema name, and the response is validated locally before it is
// returned. Model overrides the invoker's configured model when set.
type Request struct {
	Instructions string
	Turns        []Turn
	Schema       *schema.Schema
	Model        string
	Stream       bool
}

// Constraint asks a provider to constrain decoding to a schema.
type Constraint struct {
	Name   string
	Schema *schema.Schema
	Strict bool
}

// Call is what a Provider receives.
type Call struct {
	Model        string
	Instructions string
	Turns        []Turn
	Constraint   *Constraint
}

// Provider performs one non-streaming completion and returns the raw text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, call Call) (string, error)
}

// Kind distinguishes text results from structured results.
type Kind string

const (
	KindText       Kind = "text"
	KindStructured Kind = "structured"
)

// Result is the outcome of a generation: exactly one of Text or Value is
// meaningful, as indicated by Kind.
type Result struct {
	Kind  Kind
	Text  string
	Value any
}

// Text wraps opaque model output.
func Text(s string) Result {
	return Result{Kind: KindText, Text: s}
}

// Structured wraps a schema-validated value.
func Structured(v any) Result {
	return Result{Kind: KindStructured, Value: v}
}

// Decode binds a structured result into T.
func Decode[T any](r Result) (T, error) {
	var out T
	if r.Kind != KindStructured {
		return out, fmt.Errorf("decode %s result: not structured", r.Kind)
	}
	data, err := json.Marshal(r.Value)
	if err != nil {
		return out, fmt.Errorf("marshal value: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("unmarshal value: %w", err)
	}
	return out, nil
}
