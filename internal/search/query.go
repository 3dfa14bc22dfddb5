package search

import (
	"fmt"
	"strings"

	"skknicheck/internal/records"
)

// DefaultSite restricts queries to the official SKKNI registry.
const DefaultSite = "skkni.kemnaker.go.id"

// BuildQuery formats the search query for a pair. It returns false when the
// pair is unusable; such records are never searched.
func BuildQuery(number, year *int, site string) (string, bool) {
	if number == nil || year == nil {
		return "", false
	}
	return QueryFor(records.Pair{Number: *number, Year: *year}, site), true
}

// QueryFor formats the search query for a complete pair.
func QueryFor(pair records.Pair, site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		site = DefaultSite
	}
	return fmt.Sprintf(`"Nomor %d Tahun %d" "SKKNI" site:%s`, pair.Number, pair.Year, site)
}
