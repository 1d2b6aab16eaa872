package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("access forbidden")

	ErrUserNotFound   = errors.New("user not found")
	ErrClientNotFound = errors.New("client not found")
	ErrReportNotFound = errors.New("report not found")

	ErrEmailTaken          = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrClientUsernameTaken = errors.New("client username already taken")
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add records msg for field, keeping the first message seen per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UniquenessField maps a uniqueness sentinel to the request field it concerns.
// It returns "" for any other error.
func UniquenessField(err error) string {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return "email"
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrClientUsernameTaken):
		return "username"
	default:
		return ""
	}
}
