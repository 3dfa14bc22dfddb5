package reconcile

import (
	"sort"

	"skknicheck/internal/records"
)

// Alert is one revoked standard referenced by a scheme.
type Alert struct {
	SchemeName string `json:"scheme_name"`
	Number     int    `json:"nomor"`
	Year       int    `json:"tahun"`
}

// BuildAlerts collects revoked records, drops duplicates and sorts them by
// scheme name, then year, then number.
func BuildAlerts(recs []records.Record) []Alert {
	seen := make(map[Alert]struct{})
	var alerts []Alert
	for _, rec := range recs {
		if !rec.Status.Revoked() {
			continue
		}
		pair, ok := rec.Pair()
		if !ok {
			continue
		}
		alert := Alert{SchemeName: rec.SchemeName, Number: pair.Number, Year: pair.Year}
		if _, dup := seen[alert]; dup {
			continue
		}
		seen[alert] = struct{}{}
		alerts = append(alerts, alert)
	}
	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.SchemeName != b.SchemeName {
			return a.SchemeName < b.SchemeName
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Number < b.Number
	})
	return alerts
}
