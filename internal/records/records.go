package records

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Status is the classification assigned to a record. The zero value means
// "not yet assigned" and is never handed to an output collaborator.
type Status int

const (
	StatusUnset Status = iota
	StatusDicabut
	StatusBerlaku
	StatusNotFound
	StatusError
)

// Sheet labels written back to the data store.
const (
	LabelDicabut  = "Dicabut"
	LabelBerlaku  = "Berlaku"
	LabelNotFound = "Tidak ditemukan"
	LabelError    = "Error"
)

// String returns the label written to the data store.
func (s Status) String() string {
	switch s {
	case StatusDicabut:
		return LabelDicabut
	case StatusBerlaku:
		return LabelBerlaku
	case StatusNotFound:
		return LabelNotFound
	case StatusError:
		return LabelError
	default:
		return ""
	}
}

// Revoked reports whether the status is the revoked label.
func (s Status) Revoked() bool {
	return s == StatusDicabut
}

// ParseStatus maps a data-store label back to a Status. Matching ignores case
// and surrounding whitespace; unknown labels return StatusUnset.
func ParseStatus(label string) Status {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "dicabut":
		return StatusDicabut
	case "berlaku":
		return StatusBerlaku
	case "tidak ditemukan", "notfound", "not found":
		return StatusNotFound
	case "error":
		return StatusError
	default:
		return StatusUnset
	}
}

// Statuses lists every assignable status in display order.
func Statuses() []Status {
	return []Status{StatusDicabut, StatusBerlaku, StatusNotFound, StatusError}
}

// Pair is the (identifier, year) dedup key. Both fields are always present.
type Pair struct {
	Number int
	Year   int
}

// Record is one row of the input sheet. Number and Year are nil when the cell
// was blank or not an integer.
type Record struct {
	SchemeName string
	Number     *int
	Year       *int
	Status     Status

	RawNumber string
	RawYear   string
}

// Pair returns the record's lookup key and whether both fields are present.
func (r Record) Pair() (Pair, bool) {
	if r.Number == nil || r.Year == nil {
		return Pair{}, false
	}
	return Pair{Number: *r.Number, Year: *r.Year}, true
}

// New builds a record from raw cell text, parsing the identifier and year
// leniently.
func New(scheme, number, year string) Record {
	rec := Record{
		SchemeName: strings.TrimSpace(scheme),
		RawNumber:  number,
		RawYear:    year,
	}
	if n, ok := ParseInt(number); ok {
		rec.Number = &n
	}
	if y, ok := ParseInt(year); ok {
		rec.Year = &y
	}
	return rec
}

// ParseInt coerces a spreadsheet cell to an integer. It accepts plain
// integers, integral floats ("12.0") and quoted values within the int32
// range; anything else is reported as missing.
func ParseInt(value string) (int, bool) {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'`)
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err == nil {
		return int(n), true
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// ForwardFill carries the last non-blank scheme name into following rows
// whose scheme name is blank. Rows before the first non-blank value stay
// empty. The input slice is modified in place and returned.
func ForwardFill(recs []Record) []Record {
	last := ""
	for i := range recs {
		name := strings.TrimSpace(recs[i].SchemeName)
		if name == "" {
			recs[i].SchemeName = last
			continue
		}
		recs[i].SchemeName = name
		last = name
	}
	return recs
}

// Labels renders the status column for the output collaborator. Unset
// statuses fall back to the not-found label.
func Labels(recs []Record) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		status := rec.Status
		if status == StatusUnset {
			status = StatusNotFound
		}
		out[i] = status.String()
	}
	return out
}

// RevokedIndexes returns the positions of records with the revoked status.
func RevokedIndexes(recs []Record) []int {
	var out []int
	for i, rec := range recs {
		if rec.Status.Revoked() {
			out = append(out, i)
		}
	}
	return out
}
