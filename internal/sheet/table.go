package sheet

import (
	"errors"
	"fmt"
	"strings"

	"skknicheck/internal/records"
)

// ErrMissingColumns reports that the identifier or year header is absent.
var ErrMissingColumns = errors.New("missing required columns in sheet")

// MissingColumnsError names the headers that could not be located.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// Table is a raw worksheet: one header row followed by data rows. Rows may be
// ragged; absent trailing cells read as empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// FromValues splits a 2-D value grid into header and rows. An empty grid
// yields an empty table.
func FromValues(values [][]string) Table {
	if len(values) == 0 {
		return Table{}
	}
	header := make([]string, len(values[0]))
	copy(header, values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		rows = append(rows, append([]string(nil), row...))
	}
	return Table{Header: header, Rows: rows}
}

// Values returns the table as a grid with the header as first row. Every row
// is padded to the widest row so the grid is rectangular.
func (t Table) Values() [][]string {
	width := t.Width()
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, pad(t.Header, width))
	for _, row := range t.Rows {
		out = append(out, pad(row, width))
	}
	return out
}

// Width returns the number of columns of the widest row, header included.
func (t Table) Width() int {
	width := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Cell returns the value at (row, col) or "" when out of range.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Columns names the headers used for mapping.
type Columns struct {
	Scheme string
	Number string
	Year   string
	Status string
}

// DefaultColumns returns the header names used by the SKKNI worksheet.
func DefaultColumns() Columns {
	return Columns{
		Scheme: "Nama Skema",
		Number: "Nomor SKKNI",
		Year:   "Tahun SKKNI",
		Status: "Status",
	}
}

// Layout is the resolved 0-based position of each named column. A value of -1
// means the header is absent.
type Layout struct {
	Scheme int
	Number int
	Year   int
	Status int
	Width  int

	StatusHeader string
}

// Locate matches header names case-insensitively after trimming. The
// identifier and year columns are required.
func Locate(header []string, cols Columns) (Layout, error) {
	layout := Layout{
		Scheme:       find(header, cols.Scheme),
		Number:       find(header, cols.Number),
		Year:         find(header, cols.Year),
		Status:       find(header, cols.Status),
		Width:        len(header),
		StatusHeader: cols.Status,
	}
	var missing []string
	if layout.Number < 0 {
		missing = append(missing, cols.Number)
	}
	if layout.Year < 0 {
		missing = append(missing, cols.Year)
	}
	if len(missing) > 0 {
		return layout, &MissingColumnsError{Columns: missing}
	}
	return layout, nil
}

// Records maps data rows to records and forward-fills scheme names. A missing
// scheme header yields empty names. The layout width covers data rows wider
// than the header so an appended status column never lands on existing cells.
func (t Table) Records(cols Columns) ([]records.Record, Layout, error) {
	layout, err := Locate(t.Header, cols)
	if err != nil {
		return nil, layout, err
	}
	layout.Width = max(layout.Width, t.Width())
	recs := make([]records.Record, len(t.Rows))
	for i := range t.Rows {
		recs[i] = records.New(
			t.Cell(i, layout.Scheme),
			t.Cell(i, layout.Number),
			t.Cell(i, layout.Year),
		)
	}
	return records.ForwardFill(recs), layout, nil
}

func find(header []string, name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return -1
	}
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
