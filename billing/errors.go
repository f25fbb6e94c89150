package billing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidInput is returned when a calculation or query receives arguments
	// outside its domain (negative rate, zero trucks, page < 1, ...).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when an invoice id does not resolve.
	ErrNotFound = errors.New("invoice not found")

	// ErrStorageUnavailable signals a transient storage failure; callers may retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrRenderFailed is returned when a PDF could not be produced for an existing invoice.
	ErrRenderFailed = errors.New("invoice rendering failed")
)

// ValidationError lists every field of a draft that failed validation,
// keyed by JSON field name with the violated rule as value.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.FieldNames(), ", ")
}

// FieldNames returns the offending fields in a stable order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpError wraps an error with the operation that produced it.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("billing: %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Wrap returns nil when err is nil, otherwise an *OpError for op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
