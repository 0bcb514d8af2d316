// Package htmltable extracts data tables embedded in HTML pages.
//
// A Table is the header row plus body rows of one <table> element, with
// every cell reduced to its trimmed text. Cells spanning several columns
// (colspan) are repeated so rows line up with the header.
package htmltable

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header cell equal to name, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Records maps every row to header name -> cell text. Columns beyond the row's
// length map to the empty string.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// Parse reads an HTML document, decoding it to UTF-8 according to contentType
// and any <meta charset> in the page, and returns its tables in document order.
func Parse(r io.Reader, contentType string) ([]Table, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromDocument(doc), nil
}

// FromDocument returns every top-level data table in doc. A table without a
// header row is skipped.
func FromDocument(doc *goquery.Document) []Table {
	var tables []Table
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		if t, ok := fromSelection(sel); ok {
			tables = append(tables, t)
		}
	})
	return tables
}

func fromSelection(table *goquery.Selection) (Table, bool) {
	var t Table
	// the parser wraps bare rows in an implied tbody
	rows := table.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr")

	rows.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}
		values := rowText(cells)
		if t.Header == nil {
			t.Header = values
			return
		}
		t.Rows = append(t.Rows, values)
	})

	return t, t.Header != nil
}

func rowText(cells *goquery.Selection) []string {
	var values []string
	cells.Each(func(_ int, cell *goquery.Selection) {
		text := normalize(cell.Text())
		span := 1
		if v, ok := cell.Attr("colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
				span = n
			}
		}
		for i := 0; i < span; i++ {
			values = append(values, text)
		}
	})
	return values
}

// normalize collapses runs of whitespace, including non-breaking spaces, into
// single spaces and trims the result.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
