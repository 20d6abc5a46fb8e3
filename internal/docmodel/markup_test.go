package docmodel

import (
	"testing"
)

func TestMarkdownParserPlainText(t *testing.T) {
	parser := NewMarkdownParser()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "plain sentence",
			source: "A class.",
			want:   "A class.",
		},
		{
			name:   "inline markup stripped",
			source: "A *very* useful `Widget` type.",
			want:   "A very useful Widget type.",
		},
		{
			name:   "empty abstract",
			source: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parser.Parse(tt.source)
			if got := doc.PlainText(); got != tt.want {
				t.Errorf("PlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdownDocumentKeepsSource(t *testing.T) {
	doc := NewMarkdownParser().Parse("Some **abstract**.")
	md, ok := doc.(*markdownDocument)
	if !ok {
		t.Fatalf("Parse returned %T, want *markdownDocument", doc)
	}
	if md.Source() != "Some **abstract**." {
		t.Errorf("Source() = %q, want the original markup", md.Source())
	}
}
