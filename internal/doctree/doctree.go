package doctree

import "strings"

// Node kinds produced by the readers. The names follow the docutils
// document model so trees exported from Sphinx can be consumed as-is.
const (
	KindDocument       = "document"
	KindSection        = "section"
	KindTitle          = "title"
	KindSubtitle       = "subtitle"
	KindText           = "#text"
	KindParagraph      = "paragraph"
	KindStrong         = "strong"
	KindEmphasis       = "emphasis"
	KindLiteral        = "literal"
	KindReference      = "reference"
	KindLiteralBlock   = "literal_block"
	KindBlockQuote     = "block_quote"
	KindBulletList     = "bullet_list"
	KindEnumeratedList = "enumerated_list"
	KindListItem       = "list_item"
	KindImage          = "image"
	KindNote           = "note"
	KindComment        = "comment"
	KindRubric         = "rubric"
	KindTable          = "table"
	KindTGroup         = "tgroup"
	KindColSpec        = "colspec"
	KindTHead          = "thead"
	KindTBody          = "tbody"
	KindRow            = "row"
	KindEntry          = "entry"
	KindTocTree        = "toctree"

	KindDesc              = "desc"
	KindDescSignature     = "desc_signature"
	KindDescAddname       = "desc_addname"
	KindDescName          = "desc_name"
	KindDescParameterList = "desc_parameterlist"
	KindDescParameter     = "desc_parameter"
	KindDescContent       = "desc_content"
)

// textElements join their children without separators when flattened.
var textElements = map[string]bool{
	KindTitle:         true,
	KindSubtitle:      true,
	KindParagraph:     true,
	KindStrong:        true,
	KindEmphasis:      true,
	KindLiteral:       true,
	KindReference:     true,
	KindLiteralBlock:  true,
	KindRubric:        true,
	KindDescAddname:   true,
	KindDescName:      true,
	KindDescParameter: true,
	"desc_annotation": true,
	"caption":         true,
	"term":            true,
	"line":            true,
}

// IsTextElement reports whether kind holds inline content.
func IsTextElement(kind string) bool {
	return textElements[kind]
}

// TocEntry is one chapter reference of a toctree: display title and the
// document name it points to. Title may be empty.
type TocEntry struct {
	Title   string `yaml:"title"`
	DocName string `yaml:"doc"`
}

// Node is one element of a parsed document. Parent is a non-owning
// back reference maintained by Append.
type Node struct {
	Kind     string
	Text     string // payload of #text nodes
	Attrs    map[string]string
	TOC      []TocEntry // entries of a toctree node
	Parent   *Node
	Children []*Node
}

// New creates an element node and adopts the given children.
func New(kind string, children ...*Node) *Node {
	n := &Node{Kind: kind}
	return n.Append(children...)
}

// NewText creates a #text leaf.
func NewText(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Append adds children in order and points them back at n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// SetAttr sets an attribute in place and returns n for chaining.
func (n *Node) SetAttr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
	return n
}

// Attr returns the attribute value, or "" when absent.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// WithAttr returns a shallow copy of n carrying one extra attribute.
// The receiver is left untouched.
func (n *Node) WithAttr(key, value string) *Node {
	cp := *n
	cp.Attrs = make(map[string]string, len(n.Attrs)+1)
	for k, v := range n.Attrs {
		cp.Attrs[k] = v
	}
	cp.Attrs[key] = value
	return &cp
}

// IsText reports whether n is a #text leaf.
func (n *Node) IsText() bool {
	return n.Kind == KindText
}

// AsText flattens the subtree to plain text.
func (n *Node) AsText() string {
	if n.IsText() {
		return n.Text
	}
	sep := "\n\n"
	if textElements[n.Kind] {
		sep = ""
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, c.AsText())
	}
	return strings.Join(parts, sep)
}

// Walk visits n and its descendants in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindKind returns the first node of the given kind in document order,
// starting with n itself.
func (n *Node) FindKind(kind string) *Node {
	if n.Kind == kind {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindKind(kind); found != nil {
			return found
		}
	}
	return nil
}

// Child returns the first direct child of the given kind.
func (n *Node) Child(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Ancestor returns the closest ancestor of the given kind, stopping at
// any kind listed in stop.
func (n *Node) Ancestor(kind string, stop ...string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == kind {
			return p
		}
		for _, s := range stop {
			if p.Kind == s {
				return nil
			}
		}
	}
	return nil
}

// TOCEntries returns the entries of the first toctree in the subtree.
func (n *Node) TOCEntries() ([]TocEntry, bool) {
	toc := n.FindKind(KindTocTree)
	if toc == nil {
		return nil, false
	}
	return toc.TOC, true
}
