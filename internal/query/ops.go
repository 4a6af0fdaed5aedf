package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"docview/internal/index"
)

// Info is the document metadata summary.
type Info struct {
	Path            string `json:"path"`
	Format          string `json:"format"`
	CharCount       int    `json:"char_count"`
	LineCount       int    `json:"line_count"`
	HeadingCount    int    `json:"heading_count"`
	SectionCount    int    `json:"section_count"`
	EstimatedTokens int    `json:"estimated_tokens"`
	Complexity      string `json:"complexity"`
}

// Info reports metadata about the loaded document, including the
// complexity tier that tells the caller whether whole-document reads
// are safe.
func (e *Engine) Info() (*Info, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return &Info{
		Path:            e.doc.Path,
		Format:          e.doc.Format.String(),
		CharCount:       e.doc.CharCount,
		LineCount:       e.doc.LineCount,
		HeadingCount:    len(e.idx.Headings),
		SectionCount:    len(e.idx.Sections),
		EstimatedTokens: e.doc.CharCount / 4,
		Complexity:      index.Assess(e.doc, len(e.idx.Headings)).String(),
	}, nil
}

// TOC returns the ordered heading list verbatim.
func (e *Engine) TOC() ([]index.Heading, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.idx.Headings, nil
}

// Match is one surfaced search hit with its context window.
type Match struct {
	Line      int    `json:"line"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Context   string `json:"context"`
}

// SearchResult is the outcome of a keyword or regex search. MatchCount
// counts surfaced matches only; when Truncated is set the true
// occurrence count is strictly greater.
type SearchResult struct {
	Query      string  `json:"query"`
	Matches    []Match `json:"matches"`
	MatchCount int     `json:"match_count"`
	CharCount  int     `json:"char_count"`
	Truncated  bool    `json:"truncated"`
}

// SearchKeyword finds lines containing keyword, case-insensitive. Each
// match emits a context window of contextLines lines either side,
// clamped to the document. Windows of adjacent matches are not
// deduplicated; overlapping text may repeat.
func (e *Engine) SearchKeyword(keyword string, contextLines, budget int) (*SearchResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(keyword)
	return e.search(keyword, contextLines, budget, func(line string) bool {
		return strings.Contains(strings.ToLower(line), needle)
	}), nil
}

// SearchRegex is SearchKeyword with a compiled pattern. An invalid
// pattern yields an invalid_regex error, never a panic.
func (e *Engine) SearchRegex(pattern string, contextLines, budget int) (*SearchResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRegex, Hint: err.Error()}
	}
	return e.search(pattern, contextLines, budget, re.MatchString), nil
}

func (e *Engine) search(label string, contextLines, budget int, matches func(string) bool) *SearchResult {
	contextLines = normContext(contextLines)
	budget = normBudget(budget)

	res := &SearchResult{Query: label, Matches: []Match{}}
	for i, line := range e.doc.Lines {
		if !matches(line) {
			continue
		}
		lineNo := i + 1
		start := lineNo - contextLines
		if start < 1 {
			start = 1
		}
		end := lineNo + contextLines
		if end > e.doc.LineCount {
			end = e.doc.LineCount
		}
		window := e.doc.SliceLines(start, end)

		// Stop the moment the next window would exceed the budget.
		// Whole windows only; no partial context is emitted.
		if res.CharCount+len(window) > budget {
			res.Truncated = true
			break
		}
		res.Matches = append(res.Matches, Match{
			Line:      lineNo,
			StartLine: start,
			EndLine:   end,
			Context:   window,
		})
		res.CharCount += len(window)
	}
	res.MatchCount = len(res.Matches)
	return res
}

// SliceResult is an extracted line range.
type SliceResult struct {
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Text      string `json:"text"`
	CharCount int    `json:"char_count"`
	Truncated bool   `json:"truncated"`
}

// Slice extracts lines rng ("start-end", 1-indexed, inclusive). The
// end is clamped to the document; text over budget is hard-truncated
// at the exact character boundary, mid-line if need be.
func (e *Engine) Slice(rng string, budget int) (*SliceResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	budget = normBudget(budget)

	start, end, qerr := parseRange(rng, e.doc.LineCount)
	if qerr != nil {
		return nil, qerr
	}

	return e.boundedSlice(start, end, budget), nil
}

func (e *Engine) boundedSlice(start, end, budget int) *SliceResult {
	text := e.doc.SliceLines(start, end)
	res := &SliceResult{StartLine: start, EndLine: end}
	if len(text) > budget {
		text = truncate(text, budget)
		res.Truncated = true
	}
	res.Text = text
	res.CharCount = len(text)
	return res
}

func parseRange(rng string, totalLines int) (int, int, *Error) {
	first, second, found := strings.Cut(rng, "-")
	if !found {
		return 0, 0, &Error{Kind: KindInvalidRange, Hint: fmt.Sprintf("range %q must look like start-end, e.g. 5-10", rng)}
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(first))
	end, err2 := strconv.Atoi(strings.TrimSpace(second))
	if err1 != nil || err2 != nil {
		return 0, 0, &Error{Kind: KindInvalidRange, Hint: fmt.Sprintf("range %q must be two numbers separated by -", rng)}
	}
	if start < 1 || start > totalLines {
		return 0, 0, &Error{Kind: KindInvalidRange, Hint: fmt.Sprintf("start line %d is outside 1-%d", start, totalLines)}
	}
	if end < start {
		return 0, 0, &Error{Kind: KindInvalidRange, Hint: fmt.Sprintf("end line %d is before start line %d", end, start)}
	}
	if end > totalLines {
		end = totalLines
	}
	return start, end, nil
}

// SectionResult is a located section with its bounded text.
type SectionResult struct {
	Heading   string  `json:"heading"`
	Level     int     `json:"level"`
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
	Score     float64 `json:"score"`
	Text      string  `json:"text"`
	CharCount int     `json:"char_count"`
	Truncated bool    `json:"truncated"`
}

// FindSection resolves q against the section keys. An exact match on
// the normalized key scores 1; otherwise keys containing or contained
// by the query score len(query)/len(key) and the best wins. Ties keep
// the earliest section, so results are deterministic. The text is
// budgeted exactly like Slice.
func (e *Engine) FindSection(q string, budget int) (*SectionResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	budget = normBudget(budget)

	nq := index.NormalizeKey(q)
	if nq == "" {
		return nil, e.sectionNotFound(q)
	}

	if sec, ok := e.idx.Lookup(nq); ok {
		return e.sectionResult(sec, 1, budget), nil
	}

	var best *index.Section
	var bestScore float64
	for _, key := range e.idx.Keys() {
		if !strings.Contains(key, nq) && !strings.Contains(nq, key) {
			continue
		}
		score := float64(len(nq)) / float64(len(key))
		if score > bestScore {
			sec, _ := e.idx.Lookup(key)
			best, bestScore = sec, score
		}
	}
	if best == nil {
		return nil, e.sectionNotFound(q)
	}
	return e.sectionResult(best, bestScore, budget), nil
}

func (e *Engine) sectionResult(sec *index.Section, score float64, budget int) *SectionResult {
	res := &SectionResult{
		Heading:   sec.Heading,
		Level:     sec.Level,
		StartLine: sec.StartLine,
		EndLine:   sec.EndLine,
		Score:     score,
	}
	text := e.doc.SliceLines(sec.StartLine, sec.EndLine)
	if len(text) > budget {
		text = truncate(text, budget)
		res.Truncated = true
	}
	res.Text = text
	res.CharCount = len(text)
	return res
}

func (e *Engine) sectionNotFound(q string) *Error {
	qerr := &Error{
		Kind: KindSectionNotFound,
		Hint: fmt.Sprintf("no section matches %q; try one of the listed headings or toc", q),
	}
	for _, sec := range e.idx.Sections {
		if len(qerr.Suggestions) >= 10 {
			break
		}
		qerr.Suggestions = append(qerr.Suggestions, sec.Heading)
	}
	return qerr
}
