package builder

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/dgallion1/guidexml/internal/doctree"
	"github.com/dgallion1/guidexml/internal/guidexml"
)

// Header opens every guide file.
const Header = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE guide SYSTEM "http://www.gentoo.org/dtd/guide.dtd">
<!-- $Header$ -->
`

// DateLayout is the format of the <date> element.
const DateLayout = "2006-01-02"

// Meta is the guide-level metadata written before the chapters.
type Meta struct {
	Title   string
	Version string
	Date    time.Time
}

// Chapter is one toctree entry and the root sections of its document.
type Chapter struct {
	Title    string
	Sections []*guidexml.Section
}

// WriteGuide writes a complete guide document to w.
func WriteGuide(w io.Writer, meta Meta, chapters []Chapter) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(Header)
	bw.WriteString("<guide>\n")
	fmt.Fprintf(bw, "\t<title>%s</title>\n", doctree.EscapeText(meta.Title))
	bw.WriteString("\t<license />\n")
	fmt.Fprintf(bw, "\t<version>%s</version>\n", doctree.EscapeText(meta.Version))
	fmt.Fprintf(bw, "\t<date>%s</date>\n", meta.Date.Format(DateLayout))

	for _, ch := range chapters {
		fmt.Fprintf(bw, "\t<chapter>\n\t\t<title>%s</title>\n", doctree.EscapeText(ch.Title))
		for _, sec := range ch.Sections {
			bw.WriteString(sec.Markup())
		}
		bw.WriteString("\t</chapter>\n")
	}

	bw.WriteString("</guide>\n")
	return bw.Flush()
}
