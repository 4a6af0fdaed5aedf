package render

import (
	"encoding/json"
	"strings"
	"testing"

	"docview/internal/index"
	"docview/internal/query"
)

func TestJSON_RoundTripsResult(t *testing.T) {
	res := &query.SliceResult{StartLine: 5, EndLine: 10, Text: "hello", CharCount: 5}

	out, err := JSON(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["start_line"] != float64(5) || decoded["text"] != "hello" {
		t.Errorf("unexpected decode %v", decoded)
	}
}

func TestErrorJSON(t *testing.T) {
	out := ErrorJSON("section_not_found", "no such section", []string{"Intro", "Details"})

	var decoded struct {
		Error struct {
			Kind        string   `json:"kind"`
			Hint        string   `json:"hint"`
			Suggestions []string `json:"suggestions"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Error.Kind != "section_not_found" || len(decoded.Error.Suggestions) != 2 {
		t.Errorf("unexpected envelope %+v", decoded.Error)
	}
}

func TestTOCText_Indentation(t *testing.T) {
	out := TOCText([]index.Heading{
		{Level: 1, Text: "Intro", Line: 1},
		{Level: 2, Text: "Details", Line: 3},
		{Level: 3, Text: "Deep", Line: 5},
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if lines[0] != "Intro  (line 1)" {
		t.Errorf("unexpected level-1 line %q", lines[0])
	}
	if lines[1] != "  Details  (line 3)" {
		t.Errorf("expected two-space indent, got %q", lines[1])
	}
	if lines[2] != "    Deep  (line 5)" {
		t.Errorf("expected four-space indent, got %q", lines[2])
	}
}

func TestTOCText_Empty(t *testing.T) {
	if out := TOCText(nil); out != "(no headings detected)\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSearchText(t *testing.T) {
	res := &query.SearchResult{
		Query: "needle",
		Matches: []query.Match{
			{Line: 2, StartLine: 1, EndLine: 3, Context: "a\nneedle\nb"},
		},
		MatchCount: 1,
		CharCount:  10,
	}
	out := SearchText(res)
	if !strings.Contains(out, "-- match at line 2 (lines 1-3) --") {
		t.Errorf("missing match header:\n%s", out)
	}
	if !strings.Contains(out, "1 match(es)") {
		t.Errorf("missing count line:\n%s", out)
	}
	if strings.Contains(out, "[truncated") {
		t.Errorf("unexpected truncation marker:\n%s", out)
	}
}

func TestSearchText_NoMatches(t *testing.T) {
	out := SearchText(&query.SearchResult{Query: "ghost", Matches: []query.Match{}})
	if out != "no matches for \"ghost\"\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSearchText_TruncationMarker(t *testing.T) {
	res := &query.SearchResult{Query: "x", Matches: []query.Match{}, MatchCount: 0, CharCount: 0, Truncated: true}
	out := SearchText(res)
	if !strings.Contains(out, "[truncated: budget reached after 0 match(es), 0 chars") {
		t.Errorf("expected a truncation marker even with zero surfaced matches:\n%s", out)
	}
}

func TestSliceText_TruncationMarker(t *testing.T) {
	res := &query.SliceResult{StartLine: 1, EndLine: 2, Text: "aaaaa\nb", CharCount: 7, Truncated: true}
	out := SliceText(res)
	if !strings.Contains(out, "-- lines 1-2 --") {
		t.Errorf("missing range header:\n%s", out)
	}
	if !strings.Contains(out, "[truncated at 7 chars]") {
		t.Errorf("missing truncation marker:\n%s", out)
	}
}

func TestSectionText(t *testing.T) {
	res := &query.SectionResult{
		Heading: "Payment Details", Level: 2,
		StartLine: 3, EndLine: 8, Score: 0.5, Text: "body",
	}
	out := SectionText(res)
	if !strings.Contains(out, "-- Payment Details (level 2, lines 3-8, score 0.50) --") {
		t.Errorf("unexpected header:\n%s", out)
	}
}

func TestErrorText_Suggestions(t *testing.T) {
	qerr := &query.Error{
		Kind:        query.KindSectionNotFound,
		Hint:        "no section matches",
		Suggestions: []string{"Intro", "Details"},
	}
	out := ErrorText(qerr)
	if !strings.Contains(out, "error (section_not_found): no section matches") {
		t.Errorf("unexpected error line:\n%s", out)
	}
	if !strings.Contains(out, "available sections:\n  - Intro\n  - Details\n") {
		t.Errorf("missing suggestion list:\n%s", out)
	}
}
