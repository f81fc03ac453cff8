package storage

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.New("storage key must not be empty")
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// MapHTTPStatus maps storage errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Keys are slash-separated and relative; "." and ".." segments and a
// leading slash are rejected so a key cannot address outside its prefix.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return validatePrefix(key)
}

func validatePrefix(prefix string) error {
	if strings.HasPrefix(prefix, "/") {
		return ErrInvalidKey
	}
	for seg := range strings.SplitSeq(prefix, "/") {
		if seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
