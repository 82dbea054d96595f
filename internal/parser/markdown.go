package parser

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/guidexml/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Fenced blocks
// whose info string is a MyST-style directive ({toctree}, {note},
// {function}) become the matching document nodes.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	doc := newDocument(filename)
	stack := newSectionStack(doc, baseTitle(filename, ".md", ".markdown"))
	conv := &mdConverter{md: md, src: src}

	// Walk the top-level blocks and nest them by heading level.
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			title := doctree.New(doctree.KindTitle)
			conv.inlines(title, h)
			stack.heading(h.Level, title)
			continue
		}
		if b := conv.block(n); b != nil {
			stack.add(b)
		}
	}

	return doc, nil
}

type mdConverter struct {
	md  goldmark.Markdown
	src []byte
}

// blocksFrom parses a directive body as Markdown in its own right.
func (c *mdConverter) blocksFrom(body string) []*doctree.Node {
	src := []byte(body)
	sub := &mdConverter{md: c.md, src: src}
	root := c.md.Parser().Parse(text.NewReader(src))

	var out []*doctree.Node
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			rubric := doctree.New(doctree.KindRubric)
			sub.inlines(rubric, h)
			out = append(out, rubric)
			continue
		}
		if b := sub.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *mdConverter) block(n ast.Node) *doctree.Node {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if img, ok := node.FirstChild().(*ast.Image); ok && node.ChildCount() == 1 {
			return c.image(img)
		}
		p := doctree.New(doctree.KindParagraph)
		c.inlines(p, node)
		return p
	case *ast.FencedCodeBlock:
		return c.fenced(node)
	case *ast.CodeBlock:
		return doctree.New(doctree.KindLiteralBlock, doctree.NewText(c.lines(node)))
	case *ast.List:
		kind := doctree.KindBulletList
		if node.IsOrdered() {
			kind = doctree.KindEnumeratedList
		}
		list := doctree.New(kind)
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			li := doctree.New(doctree.KindListItem)
			for b := item.FirstChild(); b != nil; b = b.NextSibling() {
				li.Append(c.block(b))
			}
			list.Append(li)
		}
		return list
	case *ast.Blockquote:
		quote := doctree.New(doctree.KindBlockQuote)
		for b := node.FirstChild(); b != nil; b = b.NextSibling() {
			quote.Append(c.block(b))
		}
		return quote
	case *ast.HTMLBlock:
		raw := c.lines(node)
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(c.src))
		}
		raw = strings.TrimSpace(raw)
		if strings.HasPrefix(raw, "<!--") {
			body := strings.TrimSuffix(strings.TrimPrefix(raw, "<!--"), "-->")
			return doctree.New(doctree.KindComment, doctree.NewText(strings.TrimSpace(body)))
		}
		return nil
	case *ast.ThematicBreak:
		return doctree.New("transition")
	case *east.Table:
		return c.table(node)
	}
	return nil
}

func (c *mdConverter) fenced(n *ast.FencedCodeBlock) *doctree.Node {
	body := c.lines(n)
	var info string
	if n.Info != nil {
		info = strings.TrimSpace(string(n.Info.Segment.Value(c.src)))
	}
	directive, arg, _ := strings.Cut(info, " ")
	arg = strings.TrimSpace(arg)

	switch directive {
	case "{toctree}":
		return toctree(body)
	case "{note}":
		return doctree.New(doctree.KindNote, c.blocksFrom(body)...)
	case "{function}":
		return c.function(arg, body)
	}

	lb := doctree.New(doctree.KindLiteralBlock, doctree.NewText(body))
	if lang := string(n.Language(c.src)); lang != "" {
		lb.SetAttr("language", lang)
	}
	return lb
}

var tocLineRe = regexp.MustCompile(`^(.*?)\s*<([^<>]+)>$`)

// toctree reads one document name per line, optionally as "Title <doc>".
// Option lines such as ":maxdepth: 2" are ignored.
func toctree(body string) *doctree.Node {
	node := doctree.New(doctree.KindTocTree)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if m := tocLineRe.FindStringSubmatch(line); m != nil {
			node.TOC = append(node.TOC, doctree.TocEntry{Title: m[1], DocName: m[2]})
			continue
		}
		node.TOC = append(node.TOC, doctree.TocEntry{DocName: line})
	}
	return node
}

var signatureRe = regexp.MustCompile(`^\s*((?:[\w]+\.)*)(\w+)\s*\((.*)\)\s*$`)

// function builds a function descriptor from "pkg.name(a, b)".
func (c *mdConverter) function(sig, body string) *doctree.Node {
	signature := doctree.New(doctree.KindDescSignature)
	if m := signatureRe.FindStringSubmatch(sig); m != nil {
		if m[1] != "" {
			signature.Append(doctree.New(doctree.KindDescAddname, doctree.NewText(m[1])))
		}
		signature.Append(doctree.New(doctree.KindDescName, doctree.NewText(m[2])))
		params := doctree.New(doctree.KindDescParameterList)
		for _, p := range strings.Split(m[3], ",") {
			if p = strings.TrimSpace(p); p != "" {
				params.Append(doctree.New(doctree.KindDescParameter, doctree.NewText(p)))
			}
		}
		signature.Append(params)
	} else if sig != "" {
		signature.Append(doctree.New(doctree.KindDescName, doctree.NewText(sig)))
	}

	content := doctree.New(doctree.KindDescContent, c.blocksFrom(body)...)
	return doctree.New(doctree.KindDesc, signature, content).
		SetAttr("desctype", "function").
		SetAttr("domain", "py")
}

func (c *mdConverter) table(t *east.Table) *doctree.Node {
	tgroup := doctree.New(doctree.KindTGroup)
	for range t.Alignments {
		tgroup.Append(doctree.New(doctree.KindColSpec))
	}
	tbody := doctree.New(doctree.KindTBody)
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		row := doctree.New(doctree.KindRow)
		for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
			entry := doctree.New(doctree.KindEntry)
			if cell.HasChildren() {
				p := doctree.New(doctree.KindParagraph)
				c.inlines(p, cell)
				entry.Append(p)
			}
			row.Append(entry)
		}
		if _, ok := r.(*east.TableHeader); ok {
			tgroup.Append(doctree.New(doctree.KindTHead, row))
			continue
		}
		tbody.Append(row)
	}
	if len(tbody.Children) > 0 {
		tgroup.Append(tbody)
	}
	return doctree.New(doctree.KindTable, tgroup)
}

func (c *mdConverter) image(img *ast.Image) *doctree.Node {
	node := doctree.New(doctree.KindImage).SetAttr("uri", string(img.Destination))
	if alt := c.plain(img); alt != "" {
		node.SetAttr("alt", alt)
	}
	return node
}

// inlines converts the inline children of n and appends them to parent.
func (c *mdConverter) inlines(parent *doctree.Node, n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(c.src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				s += "\n"
			}
			parent.Append(doctree.NewText(s))
		case *ast.String:
			parent.Append(doctree.NewText(string(node.Value)))
		case *ast.Emphasis:
			kind := doctree.KindEmphasis
			if node.Level >= 2 {
				kind = doctree.KindStrong
			}
			e := doctree.New(kind)
			c.inlines(e, node)
			parent.Append(e)
		case *ast.CodeSpan:
			parent.Append(doctree.New(doctree.KindLiteral, doctree.NewText(c.plain(node))))
		case *ast.Link:
			ref := doctree.New(doctree.KindReference).SetAttr("refuri", string(node.Destination))
			c.inlines(ref, node)
			parent.Append(ref)
		case *ast.AutoLink:
			url := string(node.URL(c.src))
			parent.Append(doctree.New(doctree.KindReference, doctree.NewText(url)).SetAttr("refuri", url))
		case *ast.Image:
			parent.Append(c.image(node))
		case *ast.RawHTML:
			// Inline HTML has no equivalent in the document model.
		default:
			c.inlines(parent, child)
		}
	}
}

// plain flattens the text of an inline subtree.
func (c *mdConverter) plain(n ast.Node) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(c.src))
		case *ast.String:
			buf.Write(node.Value)
		default:
			buf.WriteString(c.plain(child))
		}
	}
	return buf.String()
}

func (c *mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return strings.TrimRight(buf.String(), "\n")
}
