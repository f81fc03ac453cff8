// Package faults defines the error taxonomy shared by research components:
// provider failures, configuration failures, and schema validation failures.
package faults

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/recon/pkg/schema"
)

var (
	// ErrProvider matches any failure reported by an external search,
	// memory, or generation provider.
	ErrProvider = errors.New("provider failure")
	// ErrConfiguration indicates an invalid request or missing setting,
	// detected before any external call is made.
	ErrConfiguration = errors.New("configuration error")
)

// ProviderError wraps a failure returned by an external provider.
type ProviderError struct {
	Provider string
	Op       string
	Status   int
	Err      error
}

// Provider wraps err as a ProviderError. A nil err yields nil.
func Provider(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// ProviderStatus builds a ProviderError for a non-success HTTP response.
func ProviderStatus(provider, op string, status int, body string) error {
	return &ProviderError{
		Provider: provider,
		Op:       op,
		Status:   status,
		Err:      fmt.Errorf("status %d: %s", status, body),
	}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// Configuration formats a configuration error.
func Configuration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Kind labels an error class for status mapping and metrics.
type Kind string

const (
	KindNone          Kind = ""
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindProvider      Kind = "provider"
	KindCanceled      Kind = "canceled"
	KindInternal      Kind = "internal"
)

// KindOf classifies err. Cancellation is checked first so a provider
// call aborted by the caller is not reported as a provider failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, schema.ErrValidation):
		return KindValidation
	case errors.Is(err, ErrProvider):
		return KindProvider
	default:
		return KindInternal
	}
}

// MapHTTPStatus maps the error taxonomy to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch KindOf(err) {
	case KindConfiguration:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindProvider:
		return http.StatusBadGateway
	case KindCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
