package guidexml

import "strings"

// Section is one heading-delimited region of output. Blocks are rendered
// GuideXML fragments in document order.
type Section struct {
	Title    string
	Blocks   []string
	Children []*Section
	Parent   *Section

	titled bool
}

func newSection(parent *Section) *Section {
	s := &Section{Parent: parent}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// setTitle records the title the first time it is called.
func (s *Section) setTitle(title string) {
	if s.titled {
		return
	}
	s.Title = title
	s.titled = true
}

func (s *Section) appendBlock(block string) {
	s.Blocks = append(s.Blocks, block)
}

// Markup serializes the section followed by its children, each child
// after the parent's body.
func (s *Section) Markup() string {
	var b strings.Builder
	s.writeMarkup(&b)
	return b.String()
}

func (s *Section) writeMarkup(b *strings.Builder) {
	b.WriteString("<section><title>")
	b.WriteString(s.Title)
	b.WriteString("</title><body>")
	for _, block := range s.Blocks {
		b.WriteString(block)
	}
	b.WriteString("</body></section>")
	for _, ch := range s.Children {
		ch.writeMarkup(b)
	}
}

// Record is the translation of one source document: its identifier and
// the root-level sections it produced.
type Record struct {
	Source   string
	Sections []*Section
}

// Markup concatenates the markup of every root section.
func (r *Record) Markup() string {
	var b strings.Builder
	for _, s := range r.Sections {
		s.writeMarkup(&b)
	}
	return b.String()
}
