package docmodel

import (
	"strings"

	"github.com/russross/blackfriday/v2"
)

// Document is a parsed markup document
type Document interface {
	// PlainText returns the document's text content with markup stripped
	PlainText() string
}

// MarkupParser parses plain-text markup source into a document.
// The bridge never renders documents; it only parses abstracts so the host
// can attach them to documentation nodes.
type MarkupParser interface {
	Parse(source string) Document
}

// MarkdownParser parses markup as Markdown
type MarkdownParser struct{}

// NewMarkdownParser creates a Markdown-backed markup parser
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse parses the source into a markdown document
func (p *MarkdownParser) Parse(source string) Document {
	md := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return &markdownDocument{
		source: source,
		root:   md.Parse([]byte(source)),
	}
}

// markdownDocument wraps a parsed markdown tree
type markdownDocument struct {
	source string
	root   *blackfriday.Node
}

// PlainText walks the tree and concatenates its text leaves
func (d *markdownDocument) PlainText() string {
	var sb strings.Builder
	d.root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if !entering {
			return blackfriday.GoToNext
		}
		switch node.Type {
		case blackfriday.Text, blackfriday.Code:
			sb.Write(node.Literal)
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			sb.WriteByte(' ')
		}
		return blackfriday.GoToNext
	})
	return sb.String()
}

// Source returns the original markup source
func (d *markdownDocument) Source() string {
	return d.source
}
