package index

import (
	"strings"
	"testing"

	"docview/internal/document"
)

func docFromLines(lines ...string) *document.Document {
	return document.New("test.md", document.FormatMarkdown, strings.Join(lines, "\n"))
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Intro", "intro"},
		{"Article 7: Termination", "article 7 termination"},
		{"  Spaced   Out  ", "spaced out"},
		{"Fees & Charges (USD)", "fees charges usd"},
		{"***", ""},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestBuild_SectionBoundaries(t *testing.T) {
	doc := docFromLines("# Intro", "hello", "## Details", "world", "# Next", "end")
	ix := Build(doc)

	tests := []struct {
		key       string
		wantStart int
		wantEnd   int
	}{
		// "Details" at level 2 does not close level-1 "Intro".
		{"intro", 1, 4},
		{"details", 3, 4},
		{"next", 5, 6},
	}
	for _, tt := range tests {
		sec, ok := ix.Lookup(tt.key)
		if !ok {
			t.Fatalf("expected section %q", tt.key)
		}
		if sec.StartLine != tt.wantStart || sec.EndLine != tt.wantEnd {
			t.Errorf("section %q: expected lines %d-%d, got %d-%d",
				tt.key, tt.wantStart, tt.wantEnd, sec.StartLine, sec.EndLine)
		}
	}
}

func TestBuild_Invariants(t *testing.T) {
	doc := docFromLines(
		"# A", "text", "## B", "text", "### C", "text",
		"## D", "text", "# E",
	)
	ix := Build(doc)

	for _, sec := range ix.Sections {
		if sec.EndLine < sec.StartLine {
			t.Errorf("section %q: end %d before start %d", sec.Heading, sec.EndLine, sec.StartLine)
		}
		if sec.EndLine > doc.LineCount {
			t.Errorf("section %q: end %d past document end %d", sec.Heading, sec.EndLine, doc.LineCount)
		}
		if got := len(doc.SliceLines(sec.StartLine, sec.EndLine)); got != sec.CharCount {
			t.Errorf("section %q: expected char count %d, got %d", sec.Heading, got, sec.CharCount)
		}
	}

	// Parent ranges re-include children: section A must span B and C.
	a, _ := ix.Lookup("a")
	b, _ := ix.Lookup("b")
	c, _ := ix.Lookup("c")
	if a.StartLine > b.StartLine || a.EndLine < b.EndLine {
		t.Errorf("parent a (%d-%d) does not cover child b (%d-%d)", a.StartLine, a.EndLine, b.StartLine, b.EndLine)
	}
	if a.EndLine < c.EndLine {
		t.Errorf("parent a (%d-%d) does not cover grandchild c ending at %d", a.StartLine, a.EndLine, c.EndLine)
	}
}

func TestBuild_SectionsCoverWholeDocument(t *testing.T) {
	doc := docFromLines("# Intro", "hello", "## Details", "world", "# Next", "end")
	ix := Build(doc)

	covered := make([]bool, doc.LineCount+1)
	for _, sec := range ix.Sections {
		for i := sec.StartLine; i <= sec.EndLine; i++ {
			covered[i] = true
		}
	}
	for i := 1; i <= doc.LineCount; i++ {
		if !covered[i] {
			t.Errorf("line %d not covered by any section", i)
		}
	}
}

func TestBuild_LegalAliasKey(t *testing.T) {
	doc := docFromLines(
		"Article 7: Termination",
		"Either party may terminate.",
		"Article 8: Notices",
		"Notices go by mail.",
	)
	ix := Build(doc)

	full, ok := ix.Lookup("article 7 termination")
	if !ok {
		t.Fatal("expected full-title key to resolve")
	}
	alias, ok := ix.Lookup("article 7")
	if !ok {
		t.Fatal("expected alias key to resolve")
	}
	if alias != full {
		t.Error("alias and full-title key should resolve to the same section")
	}
	if alias.StartLine != 1 || alias.EndLine != 2 {
		t.Errorf("expected article 7 to span lines 1-2, got %d-%d", alias.StartLine, alias.EndLine)
	}
}

func TestBuild_KeyCollisionLastWriteWins(t *testing.T) {
	doc := docFromLines("# Overview", "first", "# Overview", "second")
	ix := Build(doc)

	sec, ok := ix.Lookup("overview")
	if !ok {
		t.Fatal("expected section for duplicated heading")
	}
	if sec.StartLine != 3 {
		t.Errorf("expected the later heading to win (line 3), got line %d", sec.StartLine)
	}
	if len(ix.Collisions) != 1 || ix.Collisions[0] != "overview" {
		t.Errorf("expected collision on %q, got %v", "overview", ix.Collisions)
	}
	// Document order still lists both sections.
	if len(ix.Sections) != 2 {
		t.Errorf("expected 2 sections, got %d", len(ix.Sections))
	}
}

func TestBuild_LastHeadingRunsToEOF(t *testing.T) {
	doc := docFromLines("preamble", "# Only", "body", "more body")
	ix := Build(doc)

	sec, ok := ix.Lookup("only")
	if !ok {
		t.Fatal("expected section")
	}
	if sec.StartLine != 2 || sec.EndLine != 4 {
		t.Errorf("expected lines 2-4, got %d-%d", sec.StartLine, sec.EndLine)
	}
}
