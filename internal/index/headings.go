// Package index builds the heading and section index over a loaded
// document and scores its structural complexity.
package index

import (
	"regexp"
	"strings"
)

// Heading is a detected heading in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"`
}

// headingRule tests a single line. Rules are tried in strict priority
// order; the first match wins and a line yields at most one heading.
// keyBase is the text the section key is derived from, which for legal
// numbering is the keyword+number prefix rather than the full title.
type headingRule struct {
	name  string
	match func(line string) (level int, text string, keyBase string, ok bool)
}

var (
	atxPattern   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	legalPattern = regexp.MustCompile(`(?i)^(article|section|part|chapter)\s+(\d+|[ivxlcdm]+)[.:]?\s*(.*)$`)
)

// Characters permitted in an all-caps heuristic heading.
const capsAllowed = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 .,:;()&'\"/-"

var headingRules = []headingRule{
	{name: "atx", match: matchATX},
	{name: "legal", match: matchLegal},
	{name: "caps", match: matchAllCaps},
}

func matchATX(line string) (int, string, string, bool) {
	m := atxPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", "", false
	}
	text := strings.TrimSpace(m[2])
	return len(m[1]), text, text, true
}

func matchLegal(line string) (int, string, string, bool) {
	m := legalPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, "", "", false
	}
	level := 2
	if strings.EqualFold(m[1], "article") {
		level = 1
	}
	text := strings.TrimSpace(line)
	// Key on "Article 7", not the full title, so a caller naming just
	// the number finds the section exactly.
	return level, text, m[1] + " " + m[2], true
}

func matchAllCaps(line string) (int, string, string, bool) {
	trimmed := strings.TrimSpace(line)
	n := len(trimmed)
	if n < 6 || n > 99 {
		return 0, "", "", false
	}
	if trimmed != strings.ToUpper(trimmed) {
		return 0, "", "", false
	}
	hasLetter := false
	for _, r := range trimmed {
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
		if !strings.ContainsRune(capsAllowed, r) {
			return 0, "", "", false
		}
	}
	if !hasLetter {
		return 0, "", "", false
	}
	return 2, trimmed, trimmed, true
}

// ExtractHeadings runs every line through the rule table and returns
// the headings in document order.
func ExtractHeadings(lines []string) []Heading {
	var headings []Heading
	for i, line := range lines {
		for _, rule := range headingRules {
			level, text, _, ok := rule.match(line)
			if !ok {
				continue
			}
			headings = append(headings, Heading{Level: level, Text: text, Line: i + 1})
			break
		}
	}
	return headings
}

// keyBaseFor re-derives the key base for a heading line, matching the
// same rule that produced it.
func keyBaseFor(line string) string {
	for _, rule := range headingRules {
		if _, _, base, ok := rule.match(line); ok {
			return base
		}
	}
	return strings.TrimSpace(line)
}
