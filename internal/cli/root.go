// Package cli implements the docview command line. The root command is
// a one-shot query runner: load a document, execute the requested
// operations, and exit with 0 on success, 1 on error, 2 on success
// with zero matches.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"docview/internal/document"
	"docview/internal/extract"
	"docview/internal/query"
	"docview/internal/render"
)

var (
	loadPath      string
	showInfo      bool
	showTOC       bool
	searchKeyword string
	regexPattern  string
	sliceRange    string
	sectionName   string
	contextLines  int
	budget        int
	jsonOut       bool
	verbose       bool
	stripMarkdown bool
	loadTimeout   time.Duration
)

const (
	exitOK        = 0
	exitError     = 1
	exitNoMatches = 2
)

var rootCmd = &cobra.Command{
	Use:   "docview",
	Short: "Budgeted queries over large documents",
	Long: `docview lets an automated caller inspect large documents (text,
markdown, PDF, DOCX, HTML, CSV) through small bounded queries instead of
reading whole files: metadata, table of contents, keyword/regex search
with context, line slicing, and fuzzy section lookup. Every result is
capped by a character budget so it never overflows a context window.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&loadPath, "load", "", "Path of the document to load")
	f.BoolVar(&showInfo, "info", false, "Print document metadata and complexity")
	f.BoolVar(&showTOC, "toc", false, "Print the table of contents")
	f.StringVar(&searchKeyword, "search", "", "Case-insensitive keyword search")
	f.StringVar(&regexPattern, "regex", "", "Regular expression search")
	f.StringVar(&sliceRange, "slice", "", "Extract a 1-indexed line range, e.g. 120-180")
	f.StringVar(&sectionName, "section", "", "Find a section by (fuzzy) heading name")
	f.IntVar(&contextLines, "context", query.DefaultContextLines, "Context lines around each search match")
	f.IntVar(&budget, "budget", query.DefaultBudget, "Max characters per result")
	f.BoolVar(&jsonOut, "json", false, "Emit JSON instead of human-readable text")
	f.BoolVar(&verbose, "verbose", false, "Print load and index details to stderr")
	f.BoolVar(&stripMarkdown, "strip-markdown", false, "Render markdown to plain text before indexing")
	f.DurationVar(&loadTimeout, "timeout", 30*time.Second, "Load/extraction timeout")
}

// exitCode carries the worst outcome of a run; Execute returns it.
var exitCode = exitOK

// errAlreadyReported marks failures whose structured form was already
// printed, so Execute does not repeat them.
var errAlreadyReported = errors.New("already reported")

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errAlreadyReported) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("error"), err)
		}
		return exitError
	}
	return exitCode
}

func runRoot(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if !showInfo && !showTOC && searchKeyword == "" && regexPattern == "" &&
		sliceRange == "" && sectionName == "" {
		return fmt.Errorf("nothing to do: pass --info, --toc, --search, --regex, --slice or --section")
	}

	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}

	hadMatches := true

	if showInfo {
		info, qerr := engine.Info()
		if done := emit(out, "info", info, qerr); done != nil {
			return done
		}
	}
	if showTOC {
		headings, qerr := engine.TOC()
		if qerr != nil {
			return reportQueryError(out, qerr)
		}
		if jsonOut {
			emitJSON(out, map[string]any{"headings": headings})
		} else {
			printBlock(out, "toc", render.TOCText(headings))
		}
	}
	if searchKeyword != "" {
		res, qerr := engine.SearchKeyword(searchKeyword, contextLines, budget)
		if done := emit(out, "search", res, qerr); done != nil {
			return done
		}
		if res.MatchCount == 0 && !res.Truncated {
			hadMatches = false
		}
	}
	if regexPattern != "" {
		res, qerr := engine.SearchRegex(regexPattern, contextLines, budget)
		if done := emit(out, "regex", res, qerr); done != nil {
			return done
		}
		if res != nil && res.MatchCount == 0 && !res.Truncated {
			hadMatches = false
		}
	}
	if sliceRange != "" {
		res, qerr := engine.Slice(sliceRange, budget)
		if done := emit(out, "slice", res, qerr); done != nil {
			return done
		}
	}
	if sectionName != "" {
		res, qerr := engine.FindSection(sectionName, budget)
		if qerr != nil {
			// SectionNotFound is soft: the error lists candidate
			// headings, so it counts as zero matches, not failure.
			if e := query.AsError(qerr); e != nil && e.Kind == query.KindSectionNotFound {
				if jsonOut {
					fmt.Fprintln(out, render.ErrorJSON(string(e.Kind), e.Hint, e.Suggestions))
				} else {
					printError(out, e)
				}
				hadMatches = false
			} else {
				return reportQueryError(out, qerr)
			}
		} else if done := emit(out, "section", res, nil); done != nil {
			return done
		}
	}

	if !hadMatches {
		exitCode = exitNoMatches
	}
	return nil
}

// loadEngine loads the document named by --load. With no --load, it
// returns an engine over no document, so every operation reports
// no_document_loaded uniformly.
func loadEngine(ctx context.Context) (*query.Engine, error) {
	if loadPath == "" {
		return query.New(nil), nil
	}

	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	doc, err := document.Load(ctx, loadPath, document.LoadOptions{
		Extractors: extract.Registry(extract.Config{
			PDFFallbackPdftotext: true,
			StripMarkdown:        stripMarkdown,
		}),
	})
	if err != nil {
		return nil, err
	}

	engine := query.New(doc)
	if verbose {
		printNote(os.Stderr, "loaded %s: format=%s chars=%d lines=%d headings=%d",
			doc.Path, doc.Format, doc.CharCount, doc.LineCount, len(engine.Index().Headings))
		for _, key := range engine.Index().Collisions {
			printNote(os.Stderr, "duplicate section key %q (last heading wins)", key)
		}
	}
	return engine, nil
}

// emit renders one operation result in the selected output mode.
// A returned error aborts the run with exit code 1.
func emit(w io.Writer, op string, res any, err error) error {
	if err != nil {
		return reportQueryError(w, err)
	}
	if jsonOut {
		emitJSON(w, res)
		return nil
	}
	switch r := res.(type) {
	case *query.Info:
		printBlock(w, op, render.InfoText(r))
	case *query.SearchResult:
		printBlock(w, op+" "+fmt.Sprintf("%q", r.Query), render.SearchText(r))
	case *query.SliceResult:
		printBlock(w, op, render.SliceText(r))
	case *query.SectionResult:
		printBlock(w, op, render.SectionText(r))
	}
	return nil
}

func emitJSON(w io.Writer, v any) {
	s, err := render.JSON(v)
	if err != nil {
		fmt.Fprintln(w, render.ErrorJSON("internal", err.Error(), nil))
		return
	}
	fmt.Fprintln(w, s)
}

func reportQueryError(w io.Writer, err error) error {
	if qerr := query.AsError(err); qerr != nil {
		if jsonOut {
			fmt.Fprintln(w, render.ErrorJSON(string(qerr.Kind), qerr.Hint, qerr.Suggestions))
		} else {
			printError(w, qerr)
		}
		return errAlreadyReported
	}
	return err
}
