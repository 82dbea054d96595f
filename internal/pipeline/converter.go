package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/guidexml/internal/builder"
	"github.com/dgallion1/guidexml/internal/doctree"
	"github.com/dgallion1/guidexml/internal/guidexml"
	"github.com/dgallion1/guidexml/internal/parser"
)

// Converter turns one uploaded document into a standalone guide, each
// translated record becoming a chapter.
type Converter struct {
	translator  *guidexml.Translator
	version     string
	pdfFallback bool
	now         func() time.Time
}

// Result is a rendered guide and what went into it.
type Result struct {
	Guide    []byte
	Records  int
	Sections int
}

func NewConverter(tr *guidexml.Translator, version string, pdfFallback bool) *Converter {
	return &Converter{
		translator:  tr,
		version:     version,
		pdfFallback: pdfFallback,
		now:         time.Now,
	}
}

// Parse reads data with the reader matching filename's extension.
func (c *Converter) Parse(filename string, data []byte) (*doctree.Node, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = c.pdfFallback
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// Render translates tree and frames it as a guide. An empty title falls
// back to the first section title, then to the file name.
func (c *Converter) Render(tree *doctree.Node, filename, title string) (Result, error) {
	records, err := c.translator.Translate(tree)
	if err != nil {
		return Result{}, fmt.Errorf("translate: %w", err)
	}

	res := Result{Records: len(records)}
	chapters := make([]builder.Chapter, 0, len(records))
	for _, rec := range records {
		ch := builder.Chapter{Title: chapterTitle(rec, filename), Sections: rec.Sections}
		res.Sections += countSections(rec.Sections)
		chapters = append(chapters, ch)
	}
	if title == "" && len(chapters) > 0 {
		title = chapters[0].Title
	}

	var buf bytes.Buffer
	meta := builder.Meta{Title: title, Version: c.version, Date: c.now()}
	if err := builder.WriteGuide(&buf, meta, chapters); err != nil {
		return Result{}, fmt.Errorf("write guide: %w", err)
	}
	res.Guide = buf.Bytes()
	return res, nil
}

// Convert parses and renders in one step.
func (c *Converter) Convert(filename, title string, data []byte) (Result, error) {
	tree, err := c.Parse(filename, data)
	if err != nil {
		return Result{}, err
	}
	return c.Render(tree, filename, title)
}

func chapterTitle(rec *guidexml.Record, filename string) string {
	if len(rec.Sections) > 0 && rec.Sections[0].Title != "" {
		return rec.Sections[0].Title
	}
	name := rec.Source
	if name == "" {
		name = filename
	}
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func countSections(sections []*guidexml.Section) int {
	n := len(sections)
	for _, s := range sections {
		n += countSections(s.Children)
	}
	return n
}
