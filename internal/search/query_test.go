package search

import (
	"testing"

	"skknicheck/internal/records"
)

func pairOf(number, year int) records.Pair {
	return records.Pair{Number: number, Year: year}
}

func TestBuildQuery(t *testing.T) {
	n, y := 12, 2018
	got, ok := BuildQuery(&n, &y, "")
	if !ok {
		t.Fatal("expected query")
	}
	want := `"Nomor 12 Tahun 2018" "SKKNI" site:skkni.kemnaker.go.id`
	if got != want {
		t.Fatalf("BuildQuery = %q, want %q", got, want)
	}
	if got := QueryFor(pairOf(5, 2020), "example.org"); got != `"Nomor 5 Tahun 2020" "SKKNI" site:example.org` {
		t.Fatalf("unexpected custom site query %q", got)
	}
}

func TestBuildQueryRejectsMissingFields(t *testing.T) {
	n := 12
	if q, ok := BuildQuery(&n, nil, ""); ok || q != "" {
		t.Fatalf("expected missing year to be rejected, got %q", q)
	}
	if q, ok := BuildQuery(nil, &n, ""); ok || q != "" {
		t.Fatalf("expected missing number to be rejected, got %q", q)
	}
}
