package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Service-level errors
var (
	ErrMunicipalityNotFound = errors.New("municipality not found")
	ErrPropertyNotFound     = errors.New("property not found")
	// ErrInvalidMunicipality is returned by a partial property update whose
	// municipal reference cannot be resolved.
	ErrInvalidMunicipality = errors.New("invalid municipality ID")
)

// ValidationError reports every invalid field of a write, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors accumulates per-field messages; the first message for a field wins.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
