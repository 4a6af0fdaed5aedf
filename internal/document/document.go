// Package document loads files into immutable in-memory documents.
//
// A Document is created only by a successful Load and is never mutated
// afterwards, so any number of concurrent readers may query it without
// synchronization. Load is the only I/O-bound step; extraction of
// malformed PDF/DOCX input can stall, so Load honors context
// cancellation and deadlines.
package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// TextExtractor converts a file on disk into raw text. Concrete PDF and
// DOCX implementations live outside this package and are injected via
// LoadOptions, so the core carries no hard dependency on any particular
// extraction library.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Extractors maps formats to their text extractors. Pdf and Docx
	// require one; Html, Csv and Markdown use one when present and fall
	// back to reading the file bytes as text.
	Extractors map[Format]TextExtractor
}

// Document is an immutable loaded document. Lines are addressed
// 1-indexed throughout.
type Document struct {
	Path      string
	Format    Format
	Text      string
	Lines     []string
	CharCount int
	LineCount int
}

// Load reads the file at path into a Document. The injected extractor
// for the detected format runs under ctx so a stalled extraction is
// abandoned when the context is cancelled or times out.
func Load(ctx context.Context, path string, opts LoadOptions) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Kind: ErrFileNotFound, Path: path, Err: err}
		}
		return nil, &LoadError{Kind: ErrFileNotFound, Path: path, Hint: "file is not readable", Err: err}
	}

	format := DetectFormat(path)
	if format == FormatDocLegacy {
		return nil, &LoadError{
			Kind: ErrUnsupportedFormat,
			Path: path,
			Hint: "legacy .doc is not supported; convert it to .docx first",
		}
	}

	text, err := readText(ctx, path, format, opts)
	if err != nil {
		return nil, err
	}

	return New(path, format, text), nil
}

// New builds a Document from already-extracted text. Carriage returns
// are normalized away so line addressing is uniform across platforms.
func New(path string, format Format, text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	if text != "" {
		lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	}

	return &Document{
		Path:      path,
		Format:    format,
		Text:      text,
		Lines:     lines,
		CharCount: len(text),
		LineCount: len(lines),
	}
}

// Line returns the 1-indexed line n, or "" when out of range.
func (d *Document) Line(n int) string {
	if n < 1 || n > len(d.Lines) {
		return ""
	}
	return d.Lines[n-1]
}

// SliceLines returns lines start..end inclusive, 1-indexed, joined by
// newlines. Bounds are clamped to the document.
func (d *Document) SliceLines(start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(d.Lines) {
		end = len(d.Lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(d.Lines[start-1:end], "\n")
}

func readText(ctx context.Context, path string, format Format, opts LoadOptions) (string, error) {
	ex := opts.Extractors[format]

	switch format {
	case FormatPDF, FormatDOCX:
		if ex == nil {
			return "", &LoadError{
				Kind: ErrMissingExtractionDep,
				Path: path,
				Hint: fmt.Sprintf("no %s extractor configured", format),
			}
		}
	case FormatText, FormatMarkdown, FormatHTML, FormatCSV, FormatUnknown:
		// Unknown and the text-like formats fall back to raw bytes.
		if ex == nil {
			return readFile(path)
		}
	}

	text, err := runExtract(ctx, ex, path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", &LoadError{
				Kind: ErrExtractionFailure,
				Path: path,
				Hint: "extraction did not finish in time",
				Err:  err,
			}
		}
		return "", &LoadError{
			Kind: ErrExtractionFailure,
			Path: path,
			Hint: fmt.Sprintf("the file may be a malformed %s", format),
			Err:  err,
		}
	}
	return text, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &LoadError{Kind: ErrExtractionFailure, Path: path, Err: err}
	}
	return string(data), nil
}

// runExtract runs the extractor in its own goroutine so a stalled parse
// cannot block past the caller's deadline. The goroutine is abandoned
// on cancellation; its result channel is buffered so it can still exit.
func runExtract(ctx context.Context, ex TextExtractor, path string) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := ex.Extract(ctx, path)
		ch <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.text, r.err
	}
}
