package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/guidexml/internal/doctree"
)

// XMLParser reads docutils XML, as written by "sphinx-build -b xml" or
// rst2xml. Element names map one-to-one onto node kinds.
type XMLParser struct{}

func (p *XMLParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	dec := xml.NewDecoder(r)
	dec.Entity = xml.HTMLEntity

	var root *doctree.Node
	var stack []*doctree.Node

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := doctree.New(t.Name.Local)
			for _, a := range t.Attr {
				n.SetAttr(a.Name.Local, a.Value)
			}
			if n.Kind == doctree.KindTocTree {
				n.TOC = parseTocEntries(n.Attr("entries"))
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements")
				}
				root = n
			} else {
				stack[len(stack)-1].Append(n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			s := string(t)
			// Indentation between structural elements is not content.
			if strings.TrimSpace(s) == "" && !doctree.IsTextElement(top.Kind) {
				continue
			}
			top.Append(doctree.NewText(s))
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}
	if root.Kind == doctree.KindDocument && root.Attr("source") == "" {
		root.SetAttr("source", filename)
	}
	return root, nil
}

const pyString = `'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`

var tocEntryRe = regexp.MustCompile(`\(\s*(None|` + pyString + `)\s*,\s*(` + pyString + `)\s*\)`)

// parseTocEntries reads the serialized entries attribute of a Sphinx
// toctree node, a list of (title, docname) tuples where title may be None.
func parseTocEntries(s string) []doctree.TocEntry {
	var entries []doctree.TocEntry
	for _, m := range tocEntryRe.FindAllStringSubmatch(s, -1) {
		var title string
		if m[1] != "None" {
			title = unquotePy(m[1])
		}
		entries = append(entries, doctree.TocEntry{Title: title, DocName: unquotePy(m[2])})
	}
	return entries
}

func unquotePy(s string) string {
	if len(s) < 2 {
		return s
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
