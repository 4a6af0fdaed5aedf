package document

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable, machine-readable load failure category.
type ErrorKind string

const (
	ErrFileNotFound         ErrorKind = "file_not_found"
	ErrUnsupportedFormat    ErrorKind = "unsupported_format"
	ErrMissingExtractionDep ErrorKind = "missing_extraction_dependency"
	ErrExtractionFailure    ErrorKind = "extraction_failure"
)

// LoadError is a typed load failure. Load failures are terminal to that
// call; docview never retries internally.
type LoadError struct {
	Kind ErrorKind
	Path string
	Hint string
	Err  error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s: %s", e.Path, e.Kind)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadErrorKind extracts the kind from an error returned by Load,
// or "" if the error is not a LoadError.
func LoadErrorKind(err error) ErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
