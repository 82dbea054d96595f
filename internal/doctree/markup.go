package doctree

import (
	"sort"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#10;", "\t", "&#9;")
)

// EscapeText escapes character data the way Markup does.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// Markup serializes the subtree as an indented XML fragment. Elements end
// with a newline, children are indented by one tab, and an element whose
// only child is text keeps it inline. A #text node renders as its escaped
// text with no surrounding whitespace.
func (n *Node) Markup() string {
	if n.IsText() {
		return EscapeText(n.Text)
	}
	var b strings.Builder
	writeElement(&b, n, "")
	return b.String()
}

func writeElement(b *strings.Builder, n *Node, indent string) {
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(n.Kind)
	writeAttrs(b, n.Attrs)

	switch {
	case len(n.Children) == 0:
		b.WriteString("/>\n")
		return
	case len(n.Children) == 1 && n.Children[0].IsText():
		b.WriteByte('>')
		b.WriteString(EscapeText(n.Children[0].Text))
	default:
		b.WriteString(">\n")
		inner := indent + "\t"
		for _, c := range n.Children {
			if c.IsText() {
				b.WriteString(inner)
				b.WriteString(EscapeText(c.Text))
				b.WriteByte('\n')
				continue
			}
			writeElement(b, c, inner)
		}
		b.WriteString(indent)
	}
	b.WriteString("</")
	b.WriteString(n.Kind)
	b.WriteString(">\n")
}

func writeAttrs(b *strings.Builder, attrs map[string]string) {
	if len(attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(attrs[k]))
		b.WriteByte('"')
	}
}
