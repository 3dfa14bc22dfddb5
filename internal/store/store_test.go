package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"skknicheck/internal/config"
	"skknicheck/internal/store"
)

func TestOpenCSVBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, []byte("Nomor SKKNI,Tahun SKKNI\n1,2020\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Store.Backend = config.BackendCSV
	cfg.Store.CSV.InputPath = path

	s, err := store.Open(context.Background(), &cfg, store.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	table, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("unexpected rows %v", table.Rows)
	}
}

func TestOpenGSheetsRequiresCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Sheets.SpreadsheetKey = "key"
	if _, err := store.Open(context.Background(), &cfg, store.Options{}); err == nil {
		t.Fatal("expected credentials error")
	}

	cfg.Store.Sheets.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	if _, err := store.Open(context.Background(), &cfg, store.Options{}); err == nil {
		t.Fatal("expected missing credentials file error")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "excel"
	if _, err := store.Open(context.Background(), &cfg, store.Options{}); err == nil {
		t.Fatal("expected unsupported backend error")
	}
}

func TestColumnsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Columns.Number = "No"
	cols := store.Columns(&cfg)
	if cols.Number != "No" || cols.Year != "Tahun SKKNI" {
		t.Fatalf("unexpected columns %+v", cols)
	}
}
