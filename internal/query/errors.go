package query

import "errors"

// Kind is a stable, machine-readable query failure category. A calling
// agent loop keys recovery off the kind and shows the hint to a human.
type Kind string

const (
	KindNoDocument      Kind = "no_document_loaded"
	KindInvalidRegex    Kind = "invalid_regex"
	KindInvalidRange    Kind = "invalid_range"
	KindSectionNotFound Kind = "section_not_found"
)

// Error is a structured query failure. Query errors are always returned
// as values, never panics, so callers can adjust parameters and retry.
type Error struct {
	Kind Kind   `json:"kind"`
	Hint string `json:"hint"`

	// Suggestions lists example heading texts for section_not_found so
	// the result is self-describing.
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Hint
}

// AsError extracts the structured query error from err, or nil.
func AsError(err error) *Error {
	var qe *Error
	if errors.As(err, &qe) {
		return qe
	}
	return nil
}

func errNoDocument() *Error {
	return &Error{Kind: KindNoDocument, Hint: "load a document before querying"}
}
