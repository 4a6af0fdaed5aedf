package document

import (
	"path/filepath"
	"strings"
)

// Format is the closed set of document formats docview recognizes.
// Detection is by file extension only; there is no content sniffing.
type Format int

const (
	FormatUnknown Format = iota
	FormatText
	FormatMarkdown
	FormatPDF
	FormatDOCX
	FormatDocLegacy
	FormatHTML
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatMarkdown:
		return "markdown"
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatDocLegacy:
		return "doc"
	case FormatHTML:
		return "html"
	case FormatCSV:
		return "csv"
	}
	return "unknown"
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".text":
		return FormatText
	case ".md", ".markdown":
		return FormatMarkdown
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".doc":
		return FormatDocLegacy
	case ".html", ".htm":
		return FormatHTML
	case ".csv":
		return FormatCSV
	}
	return FormatUnknown
}
