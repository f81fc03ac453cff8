package memory

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/recon/pkg/faults"
)

// Domain errors for memory operations.
var (
	ErrNotFound      = errors.New("memory not found")
	ErrDuplicate     = errors.New("memory already exists")
	ErrInvalidName   = errors.New("invalid memory name")
	ErrEmptyDocument = errors.New("document contains no text")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidFile   = errors.New("invalid file")
)

// MapHTTPStatus maps memory domain errors to HTTP status codes, deferring
// to the shared fault taxonomy for provider and configuration failures.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrEmptyDocument), errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	}
	return faults.MapHTTPStatus(err)
}
