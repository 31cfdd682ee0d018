package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Item-level kinds. The orchestrator turns these into Error Records.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("extraction failure")
	ErrService           = errors.New("service error")
	ErrParse             = errors.New("parse error")
	ErrSchema            = errors.New("schema error")
)

// Run-level kinds. These stop a batch.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStore        = errors.New("result store failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// IsItemFailure reports whether err is confined to a single document.
func IsItemFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case IsKind(err, ErrStore):
		return false
	}
	for _, kind := range []error{ErrUnsupportedFormat, ErrExtraction, ErrService, ErrParse, ErrSchema} {
		if IsKind(err, kind) {
			return true
		}
	}
	return false
}

// ErrorKindOf returns a stable label for logs and metrics.
func ErrorKindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case IsKind(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case IsKind(err, ErrExtraction):
		return "extraction"
	case IsKind(err, ErrService):
		return "service"
	case IsKind(err, ErrParse):
		return "parse"
	case IsKind(err, ErrSchema):
		return "schema"
	default:
		return "unknown"
	}
}

// SchemaError lists every path in a judgment that violates the rubric shape.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "schema error"
	}
	return "schema error: " + strings.Join(e.Violations, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

func (e *SchemaError) add(path, format string, args ...any) {
	e.Violations = append(e.Violations, path+": "+fmt.Sprintf(format, args...))
}

// ServiceError is a failed call to the judgment service. StatusCode is zero
// when the request never got a response.
type ServiceError struct {
	Backend    string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Backend, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Backend, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Backend, e.Err)
	default:
		return e.Backend + ": request failed"
	}
}

func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrService}
	}
	return []error{ErrService, e.Err}
}

// Systemic reports whether the failure would likely repeat for any document:
// transport errors, auth and routing failures, rate limits and server errors.
func (e *ServiceError) Systemic() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == 401, e.StatusCode == 403, e.StatusCode == 404, e.StatusCode == 408, e.StatusCode == 429:
		return true
	default:
		return e.StatusCode >= 500
	}
}
