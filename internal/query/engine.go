// Package query implements the bounded operations over a loaded
// document: info, toc, keyword and regex search, line slicing, and
// fuzzy section lookup. Every operation that returns document text
// accepts a character budget and reports truncation instead of ever
// overflowing the caller's context window.
package query

import (
	"unicode/utf8"

	"docview/internal/document"
	"docview/internal/index"
)

const (
	// DefaultBudget is the per-call payload limit in characters.
	DefaultBudget = 15000
	// DefaultContextLines is the window radius around a search match.
	DefaultContextLines = 2
)

// Engine answers queries against one immutable document. Operations
// may run concurrently; nothing here mutates shared state after New.
type Engine struct {
	doc *document.Document
	idx *index.Index
}

// New builds the engine and its section index. A nil document is
// permitted; every operation then reports no_document_loaded.
func New(doc *document.Document) *Engine {
	e := &Engine{doc: doc}
	if doc != nil {
		e.idx = index.Build(doc)
	}
	return e
}

// Index exposes the underlying section index, e.g. for surfacing key
// collisions in verbose output.
func (e *Engine) Index() *index.Index { return e.idx }

// Document returns the engine's document, nil if none was loaded.
func (e *Engine) Document() *document.Document { return e.doc }

func (e *Engine) ready() *Error {
	if e == nil || e.doc == nil {
		return errNoDocument()
	}
	return nil
}

func normBudget(budget int) int {
	if budget <= 0 {
		return DefaultBudget
	}
	return budget
}

func normContext(contextLines int) int {
	if contextLines < 0 {
		return DefaultContextLines
	}
	return contextLines
}

// truncate cuts s at the budget boundary, backing up so the result
// stays valid UTF-8. The cut may land mid-line; that is the slice and
// section policy, which is stricter than search on purpose.
func truncate(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	cut := budget
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
