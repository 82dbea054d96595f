package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/guidexml/internal/doctree"
)

// csvBatchSize is the number of data rows rendered per section.
const csvBatchSize = 20

// CSVParser handles CSV files. The first record is the header row; data
// rows are grouped into sections of csvBatchSize rows, each holding a
// table that repeats the header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := newDocument(filename)
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	dataRows := records[1:]
	if len(dataRows) == 0 {
		sec := newSection(baseTitle(filename, ".csv"))
		sec.Append(csvTable(headers, nil))
		doc.Append(sec)
		return doc, nil
	}

	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))
		// 1-indexed, counting the header line.
		sec := newSection(fmt.Sprintf("Rows %d-%d", i+2, end+1))
		sec.Append(csvTable(headers, dataRows[i:end]))
		doc.Append(sec)
	}

	return doc, nil
}

func csvTable(headers []string, rows [][]string) *doctree.Node {
	tgroup := doctree.New(doctree.KindTGroup)
	for range headers {
		tgroup.Append(doctree.New(doctree.KindColSpec))
	}
	tgroup.Append(doctree.New(doctree.KindTHead, csvRow(headers)))
	if len(rows) > 0 {
		tbody := doctree.New(doctree.KindTBody)
		for _, rec := range rows {
			tbody.Append(csvRow(rec))
		}
		tgroup.Append(tbody)
	}
	return doctree.New(doctree.KindTable, tgroup)
}

func csvRow(cells []string) *doctree.Node {
	row := doctree.New(doctree.KindRow)
	for _, cell := range cells {
		entry := doctree.New(doctree.KindEntry)
		if cell != "" {
			entry.Append(newParagraph(cell))
		}
		row.Append(entry)
	}
	return row
}
