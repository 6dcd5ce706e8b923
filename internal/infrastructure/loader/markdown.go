package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// maxHeadingLevel bounds the split: headings 1-3 open a new section, deeper
// headings stay inside the surrounding section's text.
const maxHeadingLevel = 3

// MarkdownLoader splits a markdown document at heading boundaries into one
// unit per section, keeping the heading path as section metadata. Splitting
// at headings instead of character offsets avoids cutting related prose.
type MarkdownLoader struct {
	md goldmark.Markdown
}

func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{md: goldmark.New()}
}

func (l *MarkdownLoader) Load(path string) ([]domain.RawUnit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown file: %w", err)
	}

	doc := l.md.Parser().Parse(text.NewReader(source))
	sourceName := filepath.Base(path)

	var units []domain.RawUnit
	var headingPath []string
	var section strings.Builder

	flush := func() {
		body := strings.TrimSpace(section.String())
		section.Reset()
		if body == "" {
			return
		}
		units = append(units, domain.RawUnit{
			Text:        body,
			SourceName:  sourceName,
			SectionPath: append([]string(nil), headingPath...),
		})
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok && heading.Level <= maxHeadingLevel {
			flush()
			title := nodeText(heading, source)
			// Headings deeper than the current path pop back to their level
			// first, so the path always reads root-to-leaf.
			if heading.Level-1 < len(headingPath) {
				headingPath = headingPath[:heading.Level-1]
			}
			headingPath = append(headingPath, title)
			section.WriteString(title + "\n\n")
			continue
		}

		if body := nodeText(node, source); body != "" {
			section.WriteString(body)
			section.WriteString("\n\n")
		}
	}
	flush()

	return units, nil
}

// nodeText collects the plain text of a block node and its descendants.
func nodeText(node ast.Node, source []byte) string {
	var buf strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if _, ok := n.(*ast.Paragraph); ok && n != node {
				buf.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		if textNode, ok := n.(*ast.Text); ok {
			buf.Write(textNode.Segment.Value(source))
			if textNode.HardLineBreak() || textNode.SoftLineBreak() {
				buf.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
