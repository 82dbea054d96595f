package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/guidexml/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := baseTitle(filename, ".html", ".htm")
	// Extract title from <title> tag if present.
	if t := findTitle(root); t != "" {
		title = t
	}

	doc := newDocument(filename)
	stack := newSectionStack(doc, title)
	sink := &blockSink{
		emit:    func(n *doctree.Node) { stack.add(n) },
		heading: func(level int, t *doctree.Node) { stack.heading(level, t) },
	}

	c := &htmlConverter{}
	// Find <body> or use whole document.
	if body := findBody(root); body != nil {
		c.container(body, sink)
	} else {
		c.container(root, sink)
	}
	sink.flush()

	return doc, nil
}

// blockSink receives block nodes in document order. Loose inline content
// is gathered into an implicit paragraph until the next block starts.
type blockSink struct {
	emit    func(*doctree.Node)
	heading func(level int, title *doctree.Node)
	pending *doctree.Node
}

func (s *blockSink) para() *doctree.Node {
	if s.pending == nil {
		s.pending = doctree.New(doctree.KindParagraph)
	}
	return s.pending
}

func (s *blockSink) flush() {
	p := s.pending
	s.pending = nil
	if p == nil || strings.TrimSpace(p.AsText()) == "" {
		return
	}
	trimEdges(p)
	s.emit(p)
}

type htmlConverter struct{}

func (c *htmlConverter) container(n *html.Node, sink *blockSink) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.block(ch, sink)
	}
}

// nested converts the contents of a list item or quote. Headings inside
// them cannot open sections and become rubrics instead.
func (c *htmlConverter) nested(n *html.Node) []*doctree.Node {
	var out []*doctree.Node
	sink := &blockSink{
		emit: func(b *doctree.Node) { out = append(out, b) },
		heading: func(_ int, t *doctree.Node) {
			out = append(out, doctree.New(doctree.KindRubric, t.Children...))
		},
	}
	c.container(n, sink)
	sink.flush()
	return out
}

func (c *htmlConverter) block(n *html.Node, sink *blockSink) {
	switch n.Type {
	case html.CommentNode:
		sink.flush()
		sink.emit(doctree.New(doctree.KindComment, doctree.NewText(strings.TrimSpace(n.Data))))
		return
	case html.TextNode:
		sink.para().Append(doctree.NewText(collapseSpace(n.Data)))
		return
	case html.ElementNode:
	default:
		c.container(n, sink)
		return
	}

	if level := headingLevel(n.Data); level > 0 {
		sink.flush()
		title := doctree.New(doctree.KindTitle)
		c.inlines(title, n)
		trimEdges(title)
		sink.heading(level, title)
		return
	}

	switch n.Data {
	// Skip non-content elements.
	case "script", "style", "nav", "footer", "header", "head":
		return
	case "p":
		sink.flush()
		p := doctree.New(doctree.KindParagraph)
		c.inlines(p, n)
		trimEdges(p)
		sink.emit(p)
	case "pre":
		sink.flush()
		sink.emit(doctree.New(doctree.KindLiteralBlock, doctree.NewText(strings.Trim(rawText(n), "\n"))))
	case "ul", "ol":
		sink.flush()
		sink.emit(c.list(n))
	case "blockquote":
		sink.flush()
		sink.emit(doctree.New(doctree.KindBlockQuote, c.nested(n)...))
	case "table":
		sink.flush()
		sink.emit(c.table(n))
	case "hr":
		sink.flush()
		sink.emit(doctree.New("transition"))
	case "div", "section", "article", "main", "aside", "figure", "body", "html", "dl":
		sink.flush()
		c.container(n, sink)
		sink.flush()
	default:
		c.inline(sink.para(), n)
	}
}

func (c *htmlConverter) list(n *html.Node) *doctree.Node {
	kind := doctree.KindBulletList
	if n.Data == "ol" {
		kind = doctree.KindEnumeratedList
	}
	list := doctree.New(kind)
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type == html.ElementNode && li.Data == "li" {
			list.Append(doctree.New(doctree.KindListItem, c.nested(li)...))
		}
	}
	return list
}

func (c *htmlConverter) table(n *html.Node) *doctree.Node {
	var head, body []*doctree.Node
	cols := 0

	var visit func(*html.Node, bool)
	visit = func(n *html.Node, inHead bool) {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != html.ElementNode {
				continue
			}
			switch ch.Data {
			case "thead":
				visit(ch, true)
			case "tbody", "tfoot":
				visit(ch, false)
			case "tr":
				row, allHeader := c.tableRow(ch)
				cols = max(cols, len(row.Children))
				// A leading row of <th> cells is a header even without <thead>.
				if inHead || (allHeader && len(head) == 0 && len(body) == 0) {
					head = append(head, row)
				} else {
					body = append(body, row)
				}
			}
		}
	}
	visit(n, false)

	tgroup := doctree.New(doctree.KindTGroup)
	for range cols {
		tgroup.Append(doctree.New(doctree.KindColSpec))
	}
	if len(head) > 0 {
		tgroup.Append(doctree.New(doctree.KindTHead, head...))
	}
	if len(body) > 0 {
		tgroup.Append(doctree.New(doctree.KindTBody, body...))
	}
	return doctree.New(doctree.KindTable, tgroup)
}

func (c *htmlConverter) tableRow(tr *html.Node) (*doctree.Node, bool) {
	row := doctree.New(doctree.KindRow)
	allHeader := true
	for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
		if cell.Type != html.ElementNode || (cell.Data != "td" && cell.Data != "th") {
			continue
		}
		if cell.Data == "td" {
			allHeader = false
		}
		entry := doctree.New(doctree.KindEntry)
		p := doctree.New(doctree.KindParagraph)
		c.inlines(p, cell)
		if strings.TrimSpace(p.AsText()) != "" {
			trimEdges(p)
			entry.Append(p)
		}
		row.Append(entry)
	}
	return row, allHeader && len(row.Children) > 0
}

// inlines converts the children of n and appends them to parent.
func (c *htmlConverter) inlines(parent *doctree.Node, n *html.Node) {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch ch.Type {
		case html.TextNode:
			parent.Append(doctree.NewText(collapseSpace(ch.Data)))
		case html.ElementNode:
			c.inline(parent, ch)
		}
	}
}

func (c *htmlConverter) inline(parent *doctree.Node, n *html.Node) {
	switch n.Data {
	case "script", "style":
	case "strong", "b":
		e := doctree.New(doctree.KindStrong)
		c.inlines(e, n)
		parent.Append(e)
	case "em", "i":
		e := doctree.New(doctree.KindEmphasis)
		c.inlines(e, n)
		parent.Append(e)
	case "code", "tt", "kbd", "samp":
		parent.Append(doctree.New(doctree.KindLiteral, doctree.NewText(rawText(n))))
	case "a":
		ref := doctree.New(doctree.KindReference)
		if href := attr(n, "href"); href != "" {
			ref.SetAttr("refuri", href)
		}
		c.inlines(ref, n)
		parent.Append(ref)
	case "img":
		img := doctree.New(doctree.KindImage).SetAttr("uri", attr(n, "src"))
		if alt := attr(n, "alt"); alt != "" {
			img.SetAttr("alt", alt)
		}
		parent.Append(img)
	case "br":
		parent.Append(doctree.NewText("\n"))
	default:
		c.inlines(parent, n)
	}
}

var spaceRe = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return spaceRe.ReplaceAllString(s, " ")
}

// trimEdges removes leading and trailing whitespace from the outer text
// children of n.
func trimEdges(n *doctree.Node) {
	if len(n.Children) == 0 {
		return
	}
	if first := n.Children[0]; first.IsText() {
		first.Text = strings.TrimLeft(first.Text, " \n")
	}
	if last := n.Children[len(n.Children)-1]; last.IsText() {
		last.Text = strings.TrimRight(last.Text, " \n")
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// rawText concatenates the text beneath n without collapsing whitespace.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(rawText(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
