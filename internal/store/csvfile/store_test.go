package csvfile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"skknicheck/internal/logging"
	"skknicheck/internal/records"
	"skknicheck/internal/sheet"
	"skknicheck/internal/store/csvfile"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skkni.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestRoundTripWritesStatusColumn(t *testing.T) {
	input := writeInput(t, "\ufeffNama Skema,Nomor SKKNI,Tahun SKKNI\nSkema A,12,2016\n,12,2016\nSkema B,\"7\",2020\n")
	output := filepath.Join(filepath.Dir(input), "out.csv")
	store, err := csvfile.New(input, output, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	table, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Header[0] != "Nama Skema" {
		t.Fatalf("byte order mark not stripped: %q", table.Header[0])
	}
	recs, layout, err := table.Records(sheet.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	recs[0].Status = records.StatusDicabut
	recs[1].Status = records.StatusDicabut
	recs[2].Status = records.StatusBerlaku

	if err := store.WriteStatus(ctx, sheet.BuildUpdate(layout, recs)); err != nil {
		t.Fatalf("WriteStatus: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	want := "Nama Skema,Nomor SKKNI,Tahun SKKNI,Status\n" +
		"Skema A,12,2016,Dicabut\n" +
		",12,2016,Dicabut\n" +
		"Skema B,7,2020,Berlaku\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("output (-want +got):\n%s", diff)
	}

	original, _ := os.ReadFile(input)
	if strings.Contains(string(original), "Dicabut") {
		t.Fatal("input file should be untouched when an output path is set")
	}
}

func TestWriteStatusInPlaceReusesColumn(t *testing.T) {
	input := writeInput(t, "Status,Nomor SKKNI,Tahun SKKNI\nBerlaku,1,2020\n")
	store, err := csvfile.New(input, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	table, err := store.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	recs, layout, err := table.Records(sheet.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	recs[0].Status = records.StatusDicabut
	if err := store.WriteStatus(ctx, sheet.BuildUpdate(layout, recs)); err != nil {
		t.Fatalf("WriteStatus: %v", err)
	}
	got, _ := os.ReadFile(input)
	if string(got) != "Status,Nomor SKKNI,Tahun SKKNI\nDicabut,1,2020\n" {
		t.Fatalf("unexpected in-place output %q", got)
	}
}

func TestReadMissingFile(t *testing.T) {
	store, err := csvfile.New(filepath.Join(t.TempDir(), "missing.csv"), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Read(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewRequiresInput(t *testing.T) {
	if _, err := csvfile.New("  ", "", nil); err == nil {
		t.Fatal("expected error for empty input path")
	}
}
