package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/guidexml/internal/doctree"
)

func parseMarkdown(t *testing.T, input, filename string) *doctree.Node {
	t.Helper()
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	doc := parseMarkdown(t, input, "doc.md")

	if doc.Kind != doctree.KindDocument || doc.Attr("source") != "doc.md" {
		t.Errorf("expected document with source doc.md, got %s %q", doc.Kind, doc.Attr("source"))
	}

	// Top-level: one h1 ("Title")
	top := childrenOf(doc, doctree.KindSection)
	if len(top) != 1 {
		t.Fatalf("expected 1 top-level section (h1), got %d", len(top))
	}

	h1 := top[0]
	if got := titleOf(h1); got != "Title" {
		t.Errorf("expected h1 title %q, got %q", "Title", got)
	}
	paras := childrenOf(h1, doctree.KindParagraph)
	if len(paras) != 1 || !strings.Contains(paras[0].AsText(), "Intro text.") {
		t.Errorf("expected h1 to hold the intro paragraph, got %d paragraphs", len(paras))
	}

	// h1 has two h2 children: "Section A" and "Section B"
	subs := childrenOf(h1, doctree.KindSection)
	if len(subs) != 2 {
		t.Fatalf("expected 2 h2 children, got %d", len(subs))
	}
	if got := titleOf(subs[0]); got != "Section A" {
		t.Errorf("expected %q, got %q", "Section A", got)
	}
	if got := titleOf(subs[1]); got != "Section B" {
		t.Errorf("expected %q, got %q", "Section B", got)
	}

	// Section A has one h3 child
	a1 := childrenOf(subs[0], doctree.KindSection)
	if len(a1) != 1 {
		t.Fatalf("expected 1 h3 child under Section A, got %d", len(a1))
	}
	if got := titleOf(a1[0]); got != "Subsection A1" {
		t.Errorf("expected %q, got %q", "Subsection A1", got)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	doc := parseMarkdown(t, input, "plain.md")

	// No headings: everything lands in one section named after the file.
	secs := childrenOf(doc, doctree.KindSection)
	if len(secs) != 1 {
		t.Fatalf("expected 1 section for headingless markdown, got %d", len(secs))
	}
	if got := titleOf(secs[0]); got != "plain" {
		t.Errorf("expected title %q, got %q", "plain", got)
	}
	if n := len(childrenOf(secs[0], doctree.KindParagraph)); n != 2 {
		t.Errorf("expected 2 paragraphs, got %d", n)
	}
}

func TestMarkdownParser_CodeBlocks(t *testing.T) {
	input := "# API Reference\n\nList of endpoints:\n\n```http\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	doc := parseMarkdown(t, input, "api.md")
	sec := childrenOf(doc, doctree.KindSection)[0]

	blocks := childrenOf(sec, doctree.KindLiteralBlock)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 literal block, got %d", len(blocks))
	}
	if got := blocks[0].AsText(); got != "GET /api/users\nPOST /api/users" {
		t.Errorf("unexpected code block text %q", got)
	}
	if got := blocks[0].Attr("language"); got != "http" {
		t.Errorf("expected language %q, got %q", "http", got)
	}
	if n := len(childrenOf(sec, doctree.KindParagraph)); n != 2 {
		t.Errorf("expected 2 paragraphs around the code, got %d", n)
	}
}

func TestMarkdownParser_InlineMarkup(t *testing.T) {
	doc := parseMarkdown(t, "# T\n\nSome **bold**, *em*, `code` and [a link](http://x.org).\n", "i.md")
	p := doc.FindKind(doctree.KindParagraph)
	if p == nil {
		t.Fatal("expected a paragraph")
	}
	for _, kind := range []string{doctree.KindStrong, doctree.KindEmphasis, doctree.KindLiteral, doctree.KindReference} {
		if p.FindKind(kind) == nil {
			t.Errorf("expected %s inside paragraph", kind)
		}
	}
	if got := p.FindKind(doctree.KindReference).Attr("refuri"); got != "http://x.org" {
		t.Errorf("expected refuri %q, got %q", "http://x.org", got)
	}
	if got := p.AsText(); got != "Some bold, em, code and a link." {
		t.Errorf("unexpected paragraph text %q", got)
	}
}

func TestMarkdownParser_StandaloneImage(t *testing.T) {
	doc := parseMarkdown(t, "# T\n\n![Diagram](img/d.png)\n", "img.md")
	sec := childrenOf(doc, doctree.KindSection)[0]
	imgs := childrenOf(sec, doctree.KindImage)
	if len(imgs) != 1 {
		t.Fatalf("expected the image as a block, got %d", len(imgs))
	}
	if imgs[0].Attr("uri") != "img/d.png" || imgs[0].Attr("alt") != "Diagram" {
		t.Errorf("unexpected image attrs %v", imgs[0].Attrs)
	}
}

func TestMarkdownParser_ListsAndQuotes(t *testing.T) {
	doc := parseMarkdown(t, "# T\n\n- one\n- two\n\n1. first\n\n> quoted\n", "l.md")
	sec := childrenOf(doc, doctree.KindSection)[0]

	bullets := childrenOf(sec, doctree.KindBulletList)
	if len(bullets) != 1 || len(bullets[0].Children) != 2 {
		t.Fatalf("expected one bullet list with 2 items")
	}
	if got := bullets[0].Children[0].AsText(); got != "one" {
		t.Errorf("expected first item %q, got %q", "one", got)
	}
	if n := len(childrenOf(sec, doctree.KindEnumeratedList)); n != 1 {
		t.Errorf("expected 1 enumerated list, got %d", n)
	}
	if n := len(childrenOf(sec, doctree.KindBlockQuote)); n != 1 {
		t.Errorf("expected 1 block quote, got %d", n)
	}
}

func TestMarkdownParser_Table(t *testing.T) {
	doc := parseMarkdown(t, "# T\n\n| A | B |\n|---|---|\n| 1 | 2 |\n| 3 | 4 |\n", "t.md")
	table := doc.FindKind(doctree.KindTable)
	if table == nil {
		t.Fatal("expected a table")
	}
	thead := table.FindKind(doctree.KindTHead)
	tbody := table.FindKind(doctree.KindTBody)
	if thead == nil || tbody == nil {
		t.Fatal("expected thead and tbody")
	}
	if n := len(thead.Children[0].Children); n != 2 {
		t.Errorf("expected 2 header cells, got %d", n)
	}
	if n := len(tbody.Children); n != 2 {
		t.Errorf("expected 2 body rows, got %d", n)
	}
	if got := strings.TrimSpace(tbody.Children[1].Children[0].AsText()); got != "3" {
		t.Errorf("expected cell %q, got %q", "3", got)
	}
}

func TestMarkdownParser_TocTreeDirective(t *testing.T) {
	input := "# Guide\n\n```{toctree}\n:maxdepth: 2\n\nintro\nGetting Started <start>\n```\n"
	doc := parseMarkdown(t, input, "index.md")

	entries, ok := doc.TOCEntries()
	if !ok {
		t.Fatal("expected a toctree")
	}
	want := []doctree.TocEntry{{DocName: "intro"}, {Title: "Getting Started", DocName: "start"}}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry[%d]: expected %+v, got %+v", i, want[i], entries[i])
		}
	}
}

func TestMarkdownParser_NoteDirective(t *testing.T) {
	doc := parseMarkdown(t, "# T\n\n```{note}\nMind the **gap**.\n```\n", "n.md")
	note := doc.FindKind(doctree.KindNote)
	if note == nil {
		t.Fatal("expected a note")
	}
	if got := note.AsText(); got != "Mind the gap." {
		t.Errorf("unexpected note text %q", got)
	}
}

func TestMarkdownParser_FunctionDirective(t *testing.T) {
	doc := parseMarkdown(t, "# API\n\n```{function} pkg.foo(x, y)\nDoes stuff.\n```\n", "api.md")
	desc := doc.FindKind(doctree.KindDesc)
	if desc == nil {
		t.Fatal("expected a descriptor")
	}
	if got := desc.Attr("desctype"); got != "function" {
		t.Errorf("expected desctype function, got %q", got)
	}
	if got := desc.FindKind(doctree.KindDescAddname).AsText(); got != "pkg." {
		t.Errorf("expected prefix %q, got %q", "pkg.", got)
	}
	if got := desc.FindKind(doctree.KindDescName).AsText(); got != "foo" {
		t.Errorf("expected name %q, got %q", "foo", got)
	}
	params := desc.FindKind(doctree.KindDescParameterList)
	if params == nil || len(params.Children) != 2 {
		t.Fatal("expected 2 parameters")
	}
	if got := params.Children[1].AsText(); got != "y" {
		t.Errorf("expected second parameter %q, got %q", "y", got)
	}
	if got := desc.FindKind(doctree.KindDescContent).AsText(); got != "Does stuff." {
		t.Errorf("unexpected description %q", got)
	}
}

func TestMarkdownParser_HTMLComment(t *testing.T) {
	doc := parseMarkdown(t, "# T\n\n<!-- hidden -->\n\nshown\n", "c.md")
	c := doc.FindKind(doctree.KindComment)
	if c == nil {
		t.Fatal("expected a comment node")
	}
	if got := c.AsText(); got != "hidden" {
		t.Errorf("expected comment text %q, got %q", "hidden", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	doc := parseMarkdown(t, "", "empty.md")
	if len(doc.Children) != 0 {
		t.Errorf("expected 0 children for empty input, got %d", len(doc.Children))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"docs/plain.md", "plain"},
	}
	for _, tt := range tests {
		doc := parseMarkdown(t, "text", tt.filename)
		secs := childrenOf(doc, doctree.KindSection)
		if len(secs) != 1 {
			t.Fatalf("filename=%q: expected 1 section, got %d", tt.filename, len(secs))
		}
		if got := titleOf(secs[0]); got != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, got)
		}
	}
}
