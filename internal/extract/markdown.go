package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown renders markdown to plain text. Headings stay as ATX lines
// so the section indexer keeps working; emphasis, links and other
// inline markup are stripped. Only used in strip-markdown mode; the
// default loader reads markdown source verbatim.
type Markdown struct{}

func (m *Markdown) Extract(ctx context.Context, path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var buf strings.Builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			buf.WriteString(strings.Repeat("#", node.Level) + " " + string(node.Text(src)) + "\n")
		default:
			if t := blockText(n, src); t != "" {
				buf.WriteString(t + "\n\n")
			}
		}
	}
	return buf.String(), nil
}

// blockText collects the plain text of a non-heading block node.
// Blocks with children are walked for inline text; leaf blocks such as
// fenced code yield their raw source lines.
func blockText(n ast.Node, src []byte) string {
	var buf strings.Builder
	if !n.HasChildren() {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		part := blockText(c, src)
		if part == "" {
			continue
		}
		if c.Type() == ast.TypeBlock && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(part)
	}
	return strings.TrimSpace(buf.String())
}
