package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDF extracts text from PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled and available.
type PDF struct {
	FallbackPdftotext bool
}

func (p *PDF) Extract(ctx context.Context, path string) (string, error) {
	text, err := extractPDFText(path)
	if err != nil && p.FallbackPdftotext {
		var fbErr error
		text, fbErr = extractPdftotext(ctx, path)
		if fbErr != nil {
			return "", fmt.Errorf("extract pdf text: %w (pdftotext fallback: %v)", err, fbErr)
		}
		return text, nil
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return text, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
