// Package extract turns a Wikipedia world records table into a clean,
// rectangular record set.
//
// The source table has a caption row and a header row, then data rows
// where an event name cell may span several rows and where shaded rows (or
// cells) mark records outside the canonical list.
package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// ErrTableNotFound is returned when the page lacks the expected record tables.
var ErrTableNotFound = errors.New("record table not found")

const (
	headerRows      = 2
	headerRowIndex  = 1
	eventLabel      = "Event"
	discardedColumn = 3
)

// keptColumns are the raw column positions that map onto domain.Columns.
var keptColumns = func() []int {
	cols := make([]int, 0, len(domain.Columns))
	for i := 0; len(cols) < len(domain.Columns); i++ {
		if i != discardedColumn {
			cols = append(cols, i)
		}
	}
	return cols
}()

// Stats summarizes one extraction.
type Stats struct {
	DataRows    int      // rows after the two header rows that had cells
	EmptyRows   int      // rows skipped for having no cells
	Flagged     int      // rows dropped by the flag filter
	RawColumns  []string // header labels including placeholders
	Placeholder int      // number of synthesized placeholder labels
}

// rawRow is a positionally consumed table row before column selection.
type rawRow struct {
	cells   []string
	flagged bool
}

// Table extracts the record rows from a record table selection.
func Table(table *goquery.Selection) ([]domain.Record, Stats) {
	rows := table.Find("tr")
	headers := headerLabels(rows)

	var stats Stats
	var raw []rawRow
	var span rowSpan

	rows.Each(func(i int, tr *goquery.Selection) {
		if i < headerRows {
			return
		}
		cells := tr.ChildrenFiltered("td, th")
		if cells.Length() == 0 {
			stats.EmptyRows++
			return
		}
		stats.DataRows++
		raw = append(raw, readRow(tr, cells, &span))
	})

	stats.RawColumns = rectangularHeaders(headers, raw)
	stats.Placeholder = len(stats.RawColumns) - len(headers)

	records := make([]domain.Record, 0, len(raw))
	for _, r := range raw {
		if r.flagged {
			stats.Flagged++
			continue
		}
		records = append(records, selectColumns(r.cells))
	}
	return records, stats
}

// headerLabels reads the header row labels and prepends the event label.
func headerLabels(rows *goquery.Selection) []string {
	labels := []string{eventLabel}
	rows.Eq(headerRowIndex).Find("th").Each(func(_ int, th *goquery.Selection) {
		labels = append(labels, cellText(th))
	})
	return labels
}

// readRow computes the flag and event label for one row, then appends the
// remaining cell texts.
func readRow(tr, cells *goquery.Selection, span *rowSpan) rawRow {
	flagged := IsFlagged(tr.AttrOr("style", ""), tr.AttrOr("bgcolor", ""))
	cells.EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if IsFlagged(td.AttrOr("style", ""), td.AttrOr("bgcolor", "")) {
			flagged = true
			return false
		}
		return true
	})

	first := cells.First()
	rowspan, hasRowspan := first.Attr("rowspan")
	event, consumed := span.next(cellText(first), rowspan, hasRowspan)
	if consumed {
		cells = cells.Slice(1, cells.Length())
	}

	row := rawRow{cells: make([]string, 0, cells.Length()+1), flagged: flagged}
	row.cells = append(row.cells, event)
	cells.Each(func(_ int, td *goquery.Selection) {
		row.cells = append(row.cells, cellText(td))
	})
	return row
}

// rowSpan carries an event label across the rows its cell spans.
type rowSpan struct {
	current   string
	remaining int
}

// next returns the event label for a row whose first cell has the given
// text and rowspan attribute, and whether that cell was consumed as the
// event column.
func (s *rowSpan) next(firstText, rowspan string, hasRowspan bool) (string, bool) {
	switch {
	case hasRowspan:
		s.current = firstText
		s.remaining = parseSpan(rowspan) - 1
		return s.current, true
	case s.remaining > 0:
		s.remaining--
		return s.current, false
	default:
		s.current = firstText
		return s.current, true
	}
}

// parseSpan reads a rowspan value, treating malformed values as 1.
func parseSpan(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// rectangularHeaders extends headers with placeholder labels so every row
// has a named column.
func rectangularHeaders(headers []string, rows []rawRow) []string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.cells))
	}
	out := append([]string(nil), headers...)
	for i := len(out); i < width; i++ {
		out = append(out, fmt.Sprintf("Column_%d", i))
	}
	return out
}

// selectColumns keeps the canonical column positions, padding short rows.
func selectColumns(cells []string) domain.Record {
	fields := make([]string, len(keptColumns))
	for i, col := range keptColumns {
		if col < len(cells) {
			fields[i] = cells[col]
		}
	}
	return domain.RecordFromFields(fields)
}

// cellText joins the cell's text nodes, each trimmed, with no separator.
func cellText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		appendText(&b, n)
	}
	return b.String()
}

func appendText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(b, c)
	}
}
