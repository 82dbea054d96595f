package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/guidexml/internal/doctree"
)

// Parser converts raw document bytes into a doctree document node.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Node, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xml":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xml":
		return &XMLParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Format returns the lower-cased extension without its dot, used as a
// metrics label.
func Format(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// baseTitle strips the directory and any of the given suffixes.
func baseTitle(filename string, suffixes ...string) string {
	title := filepath.Base(filename)
	for _, s := range suffixes {
		title = strings.TrimSuffix(title, s)
	}
	return title
}

func newDocument(filename string) *doctree.Node {
	return doctree.New(doctree.KindDocument).SetAttr("source", filename)
}

func newSection(title string) *doctree.Node {
	return doctree.New(doctree.KindSection, doctree.New(doctree.KindTitle, doctree.NewText(title)))
}

func newParagraph(text string) *doctree.Node {
	return doctree.New(doctree.KindParagraph, doctree.NewText(text))
}

// sectionStack nests sections by heading level. Content arriving before
// the first heading goes into a leading section named after the document.
type sectionStack struct {
	doc     *doctree.Node
	title   string
	entries []stackEntry
}

type stackEntry struct {
	node     *doctree.Node
	level    int
	preamble bool
}

func newSectionStack(doc *doctree.Node, title string) *sectionStack {
	return &sectionStack{doc: doc, title: title}
}

// heading opens a new section at level, closing any at the same or a
// deeper level, and returns it.
func (s *sectionStack) heading(level int, title *doctree.Node) *doctree.Node {
	for len(s.entries) > 0 {
		top := s.entries[len(s.entries)-1]
		if top.level < level && !top.preamble {
			break
		}
		s.entries = s.entries[:len(s.entries)-1]
	}
	sec := doctree.New(doctree.KindSection, title)
	if len(s.entries) == 0 {
		s.doc.Append(sec)
	} else {
		s.entries[len(s.entries)-1].node.Append(sec)
	}
	s.entries = append(s.entries, stackEntry{node: sec, level: level})
	return sec
}

// add appends block-level content to the innermost open section.
func (s *sectionStack) add(blocks ...*doctree.Node) {
	if len(s.entries) == 0 {
		s.heading(0, doctree.New(doctree.KindTitle, doctree.NewText(s.title)))
		s.entries[0].preamble = true
	}
	s.entries[len(s.entries)-1].node.Append(blocks...)
}
