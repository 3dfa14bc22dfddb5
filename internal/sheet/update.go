package sheet

import (
	"sort"

	"skknicheck/internal/records"
)

// StatusUpdate is everything a sink needs to merge statuses back into the
// worksheet it was read from.
type StatusUpdate struct {
	// Column is the 0-based status column.
	Column int
	Header string
	// WriteHeader is set when the status column did not exist yet.
	WriteHeader bool
	// Values holds one label per data row, in input order.
	Values []string
	// Highlight lists the 0-based data rows to paint.
	Highlight []int
	// HighlightColumns lists the 0-based columns painted on highlighted rows.
	HighlightColumns []int
}

// BuildUpdate places the status column and collects highlight targets. An
// existing status header is reused; otherwise the column is appended after
// the last header column.
func BuildUpdate(layout Layout, recs []records.Record) StatusUpdate {
	update := StatusUpdate{
		Column: layout.Status,
		Header: layout.StatusHeader,
		Values: records.Labels(recs),
	}
	if update.Column < 0 {
		update.Column = layout.Width
		update.WriteHeader = true
	}
	update.Highlight = records.RevokedIndexes(recs)
	update.HighlightColumns = uniqueSorted(layout.Number, layout.Year, update.Column)
	return update
}

// Width returns the minimum column count the target grid must have.
func (u StatusUpdate) Width() int {
	return u.Column + 1
}

// Apply returns a copy of t with the status column written. Highlights are
// not representable in a plain table and are ignored.
func Apply(t Table, u StatusUpdate) Table {
	width := t.Width()
	if u.Width() > width {
		width = u.Width()
	}
	out := Table{Header: pad(t.Header, width)}
	if u.WriteHeader || out.Header[u.Column] == "" {
		out.Header[u.Column] = u.Header
	}
	rows := len(t.Rows)
	if len(u.Values) > rows {
		rows = len(u.Values)
	}
	out.Rows = make([][]string, rows)
	for i := range out.Rows {
		var src []string
		if i < len(t.Rows) {
			src = t.Rows[i]
		}
		row := pad(src, width)
		if i < len(u.Values) {
			row[u.Column] = u.Values[i]
		}
		out.Rows[i] = row
	}
	return out
}

func uniqueSorted(values ...int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v < 0 {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
