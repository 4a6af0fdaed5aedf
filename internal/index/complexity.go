package index

import (
	"regexp"

	"docview/internal/document"
)

// Tier classifies how densely a document cross-references itself.
// Low means whole-document reads are safe; High means the caller
// should stick to progressive, budgeted access.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	}
	return "high"
}

var refPattern = regexp.MustCompile(
	`(?i)\b(?:see|refer to|as defined in|pursuant to|in accordance with)\s+` +
		`(?:section|article|chapter|part|clause|subsection|paragraph|appendix|schedule|exhibit)\b`)

// Assess scores a document from its size, heading count and
// referential-phrase density. Densities are per 10k characters, so
// duplicating a document's content never lowers its tier.
func Assess(doc *document.Document, headingCount int) Tier {
	return assess(doc.CharCount, headingCount, doc.Text)
}

func assess(charCount, headingCount int, text string) Tier {
	if charCount == 0 {
		return TierLow
	}

	crossRefDensity := float64(headingCount) / float64(charCount) * 10000
	refDensity := float64(len(refPattern.FindAllStringIndex(text, -1))) / float64(charCount) * 10000

	switch {
	case charCount < 10000 && crossRefDensity < 1:
		return TierLow
	case charCount < 50000 && crossRefDensity < 3 && refDensity < 1:
		return TierMedium
	}
	return TierHigh
}
