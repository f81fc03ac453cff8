package agents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/recon/pkg/faults"
)

// Domain errors for agent operations.
var (
	ErrInvalidInput = errors.New("input must be a non-empty string")
	ErrUnknownAgent = errors.New("unknown agent")
)

// MapHTTPStatus maps run failures to HTTP status codes. A configuration
// error surfacing from a run is a server fault, not a bad request.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownAgent):
		return http.StatusNotFound
	case errors.Is(err, faults.ErrConfiguration):
		return http.StatusInternalServerError
	}
	return faults.MapHTTPStatus(err)
}
