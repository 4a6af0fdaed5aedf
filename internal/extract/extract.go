// Package extract supplies the concrete text extractors injected into
// document.Load. The core engine only depends on the TextExtractor
// capability; everything format-specific lives here.
package extract

import "docview/internal/document"

// Config controls optional extractor behavior.
type Config struct {
	// PDFFallbackPdftotext shells out to pdftotext when the Go PDF
	// library fails on a file.
	PDFFallbackPdftotext bool

	// StripMarkdown renders markdown to plain text (headings kept as
	// ATX lines) instead of loading the raw source.
	StripMarkdown bool
}

// Registry returns the default extractor set for document.Load.
func Registry(cfg Config) map[document.Format]document.TextExtractor {
	ex := map[document.Format]document.TextExtractor{
		document.FormatPDF:  &PDF{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		document.FormatDOCX: &DOCX{},
		document.FormatHTML: &HTML{},
		document.FormatCSV:  &CSV{},
	}
	if cfg.StripMarkdown {
		ex[document.FormatMarkdown] = &Markdown{}
	}
	return ex
}
