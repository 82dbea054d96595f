package guidexml

import (
	"strings"

	"github.com/dgallion1/guidexml/internal/doctree"
)

// table accumulates rendered cells row by row.
type table struct {
	rows [][]string
}

func (t *table) addRow() {
	t.rows = append(t.rows, nil)
}

func (t *table) addCell(text string, header bool) {
	if len(t.rows) == 0 {
		t.addRow()
	}
	cell := "<ti>" + text + "</ti>"
	if header {
		cell = "<th>" + text + "</th>"
	}
	last := len(t.rows) - 1
	t.rows[last] = append(t.rows[last], cell)
}

func (t *table) markup() string {
	var b strings.Builder
	b.WriteString("<table>")
	for _, r := range t.rows {
		b.WriteString("<tr>")
		for _, c := range r {
			b.WriteString(c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// assembleTable walks a table subtree and flattens its head and body
// rows into GuideXML. A cell is flushed when the next entry, row or body
// marker arrives; the last pending cell is always flushed as a data cell.
func assembleTable(n *doctree.Node) string {
	var (
		tb      table
		pending *strings.Builder
		header  bool
	)
	flush := func(asHeader bool) {
		if pending != nil {
			tb.addCell(pending.String(), asHeader)
			pending = nil
		}
	}

	n.Walk(func(sn *doctree.Node) {
		switch sn.Kind {
		case doctree.KindTHead:
			header = true
		case doctree.KindTBody:
			flush(header)
			header = false
		case doctree.KindRow:
			flush(header)
			tb.addRow()
		case doctree.KindEntry:
			flush(header)
			if sn.AsText() == "" {
				tb.addCell("", header)
				return
			}
			pending = &strings.Builder{}
		case doctree.KindText:
			if pending == nil || sn.Parent == nil {
				return
			}
			switch sn.Parent.Kind {
			case doctree.KindParagraph:
				pending.WriteString(sn.Markup())
			case doctree.KindStrong:
				pending.WriteString("<b>" + sn.Markup() + "</b>")
			case doctree.KindEmphasis:
				pending.WriteString("<e>" + sn.Markup() + "</e>")
			}
		}
	})
	flush(false)

	return tb.markup()
}
