// Package render turns query results into human-readable text or JSON.
// It is pure presentation: truncation flags, scores and hints pass
// through unaltered.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"docview/internal/index"
	"docview/internal/query"
)

// JSON renders any result as an indented JSON document.
func JSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b), nil
}

// ErrorJSON wraps a structured query or load error in an error envelope.
func ErrorJSON(kind, hint string, suggestions []string) string {
	b, _ := json.MarshalIndent(map[string]any{
		"error": map[string]any{
			"kind":        kind,
			"hint":        hint,
			"suggestions": suggestions,
		},
	}, "", "  ")
	return string(b)
}

// InfoText renders document metadata as aligned key: value lines.
func InfoText(info *query.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path:             %s\n", info.Path)
	fmt.Fprintf(&b, "Format:           %s\n", info.Format)
	fmt.Fprintf(&b, "Characters:       %d\n", info.CharCount)
	fmt.Fprintf(&b, "Lines:            %d\n", info.LineCount)
	fmt.Fprintf(&b, "Headings:         %d\n", info.HeadingCount)
	fmt.Fprintf(&b, "Sections:         %d\n", info.SectionCount)
	fmt.Fprintf(&b, "Est. tokens:      %d\n", info.EstimatedTokens)
	fmt.Fprintf(&b, "Complexity:       %s\n", info.Complexity)
	return b.String()
}

// TOCText renders the heading list as an indented outline.
func TOCText(headings []index.Heading) string {
	if len(headings) == 0 {
		return "(no headings detected)\n"
	}
	var b strings.Builder
	for _, h := range headings {
		fmt.Fprintf(&b, "%s%s  (line %d)\n", strings.Repeat("  ", h.Level-1), h.Text, h.Line)
	}
	return b.String()
}

// SearchText renders every surfaced match with its context window and
// appends a truncation marker when the budget cut the result short.
func SearchText(res *query.SearchResult) string {
	var b strings.Builder
	if res.MatchCount == 0 && !res.Truncated {
		fmt.Fprintf(&b, "no matches for %q\n", res.Query)
		return b.String()
	}
	for _, m := range res.Matches {
		fmt.Fprintf(&b, "-- match at line %d (lines %d-%d) --\n%s\n", m.Line, m.StartLine, m.EndLine, m.Context)
	}
	fmt.Fprintf(&b, "%d match(es)\n", res.MatchCount)
	if res.Truncated {
		fmt.Fprintf(&b, "[truncated: budget reached after %d match(es), %d chars; raise --budget or narrow the query]\n",
			res.MatchCount, res.CharCount)
	}
	return b.String()
}

// SliceText renders an extracted range, marking a mid-line hard cut.
func SliceText(res *query.SliceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- lines %d-%d --\n%s\n", res.StartLine, res.EndLine, res.Text)
	if res.Truncated {
		fmt.Fprintf(&b, "[truncated at %d chars]\n", res.CharCount)
	}
	return b.String()
}

// SectionText renders a located section with its match score.
func SectionText(res *query.SectionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- %s (level %d, lines %d-%d, score %.2f) --\n%s\n",
		res.Heading, res.Level, res.StartLine, res.EndLine, res.Score, res.Text)
	if res.Truncated {
		fmt.Fprintf(&b, "[truncated at %d chars]\n", res.CharCount)
	}
	return b.String()
}

// ErrorText renders a structured query error with its hint and any
// section suggestions.
func ErrorText(qerr *query.Error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error (%s): %s\n", qerr.Kind, qerr.Hint)
	if len(qerr.Suggestions) > 0 {
		b.WriteString("available sections:\n")
		for _, s := range qerr.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", s)
		}
	}
	return b.String()
}
