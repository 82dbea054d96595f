package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/guidexml/internal/doctree"
)

func parseCSV(t *testing.T, input string) *doctree.Node {
	t.Helper()
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "data.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func TestCSVParser_SingleBatch(t *testing.T) {
	doc := parseCSV(t, "name,age\nann,31\nbob,\ncy,7\n")

	secs := childrenOf(doc, doctree.KindSection)
	if len(secs) != 1 {
		t.Fatalf("expected 1 section, got %d", len(secs))
	}
	if got := titleOf(secs[0]); got != "Rows 2-4" {
		t.Errorf("expected title %q, got %q", "Rows 2-4", got)
	}

	table := secs[0].Child(doctree.KindTable)
	if table == nil {
		t.Fatal("expected a table")
	}
	head := table.FindKind(doctree.KindTHead)
	if head == nil || len(head.Children[0].Children) != 2 {
		t.Fatal("expected a 2-cell header row")
	}
	body := table.FindKind(doctree.KindTBody)
	if body == nil || len(body.Children) != 3 {
		t.Fatal("expected 3 body rows")
	}
	// Empty fields become empty entries.
	if cell := body.Children[1].Children[1]; len(cell.Children) != 0 {
		t.Errorf("expected empty entry, got %d children", len(cell.Children))
	}
}

func TestCSVParser_Batching(t *testing.T) {
	var b strings.Builder
	b.WriteString("id\n")
	for i := 1; i <= 45; i++ {
		fmt.Fprintf(&b, "%d\n", i)
	}
	doc := parseCSV(t, b.String())

	secs := childrenOf(doc, doctree.KindSection)
	want := []string{"Rows 2-21", "Rows 22-41", "Rows 42-46"}
	if len(secs) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(secs))
	}
	for i, w := range want {
		if got := titleOf(secs[i]); got != w {
			t.Errorf("section[%d]: expected %q, got %q", i, w, got)
		}
	}
	if n := len(secs[2].FindKind(doctree.KindTBody).Children); n != 5 {
		t.Errorf("expected 5 rows in last batch, got %d", n)
	}
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	doc := parseCSV(t, "a,b\n")
	secs := childrenOf(doc, doctree.KindSection)
	if len(secs) != 1 {
		t.Fatalf("expected 1 section, got %d", len(secs))
	}
	if got := titleOf(secs[0]); got != "data" {
		t.Errorf("expected title %q, got %q", "data", got)
	}
	if secs[0].FindKind(doctree.KindTBody) != nil {
		t.Error("expected no body rows")
	}
}

func TestCSVParser_Empty(t *testing.T) {
	doc := parseCSV(t, "")
	if len(doc.Children) != 0 {
		t.Errorf("expected 0 children, got %d", len(doc.Children))
	}
}
