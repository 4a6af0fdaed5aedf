package index

import (
	"strings"
	"unicode"

	"docview/internal/document"
)

// Section is a heading-anchored line range. A parent section's range
// includes every nested subsection, so sections overlap by design and
// are not a disjoint partition of the document.
type Section struct {
	Heading   string `json:"heading"`
	Level     int    `json:"level"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Key       string `json:"key"`
	CharCount int    `json:"char_count"`
}

type keyEntry struct {
	key     string
	section *Section
}

// Index is the heading and section index of a single document.
// Immutable after Build; safe for concurrent readers.
type Index struct {
	Headings []Heading
	Sections []*Section

	byKey   map[string]*Section
	entries []keyEntry

	// Collisions lists keys that were produced by more than one
	// heading. Resolution is last-write-wins; callers may surface
	// these rather than have them disappear silently.
	Collisions []string
}

// Build extracts headings and constructs the section map for doc.
func Build(doc *document.Document) *Index {
	ix := &Index{
		Headings: ExtractHeadings(doc.Lines),
		byKey:    make(map[string]*Section),
	}

	for i, h := range ix.Headings {
		end := doc.LineCount
		for _, next := range ix.Headings[i+1:] {
			if next.Level <= h.Level {
				end = next.Line - 1
				break
			}
		}

		sec := &Section{
			Heading:   h.Text,
			Level:     h.Level,
			StartLine: h.Line,
			EndLine:   end,
			Key:       NormalizeKey(h.Text),
			CharCount: len(doc.SliceLines(h.Line, end)),
		}
		ix.Sections = append(ix.Sections, sec)
		ix.register(sec.Key, sec)

		// Legal-numbered headings also answer to their keyword+number
		// prefix, e.g. "Article 7: Termination" -> "article 7".
		if base := keyBaseFor(doc.Line(h.Line)); base != h.Text {
			if alias := NormalizeKey(base); alias != "" && alias != sec.Key {
				ix.register(alias, sec)
			}
		}
	}

	return ix
}

func (ix *Index) register(key string, sec *Section) {
	if key == "" {
		return
	}
	if _, exists := ix.byKey[key]; exists {
		ix.Collisions = append(ix.Collisions, key)
		for i := range ix.entries {
			if ix.entries[i].key == key {
				ix.entries[i].section = sec
			}
		}
	} else {
		ix.entries = append(ix.entries, keyEntry{key: key, section: sec})
	}
	ix.byKey[key] = sec
}

// Lookup resolves a normalized key to its section.
func (ix *Index) Lookup(key string) (*Section, bool) {
	sec, ok := ix.byKey[key]
	return sec, ok
}

// Keys returns every registered key in document order.
func (ix *Index) Keys() []string {
	keys := make([]string, len(ix.entries))
	for i, e := range ix.entries {
		keys[i] = e.key
	}
	return keys
}

// NormalizeKey lowercases s, replaces non-alphanumeric runs with a
// single space, and trims. Both section keys and find-section queries
// go through this.
func NormalizeKey(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
