package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"skknicheck/internal/records"
)

func revoked(scheme, number, year string) records.Record {
	rec := records.New(scheme, number, year)
	rec.Status = records.StatusDicabut
	return rec
}

func TestBuildAlertsFiltersDedupsAndSorts(t *testing.T) {
	active := records.New("A", "1", "2015")
	active.Status = records.StatusBerlaku
	recs := []records.Record{
		revoked("Teknisi", "9", "2019"),
		active,
		revoked("Analis", "30", "2018"),
		revoked("Analis", "4", "2018"),
		revoked("Analis", "4", "2018"),
		revoked("Analis", "2", "2016"),
		revoked("Teknisi", "9", "2019"),
	}
	want := []Alert{
		{SchemeName: "Analis", Number: 2, Year: 2016},
		{SchemeName: "Analis", Number: 4, Year: 2018},
		{SchemeName: "Analis", Number: 30, Year: 2018},
		{SchemeName: "Teknisi", Number: 9, Year: 2019},
	}
	if diff := cmp.Diff(want, BuildAlerts(recs)); diff != "" {
		t.Fatalf("alerts mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAlertsEmpty(t *testing.T) {
	active := records.New("A", "1", "2015")
	active.Status = records.StatusBerlaku
	if alerts := BuildAlerts([]records.Record{active}); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}
