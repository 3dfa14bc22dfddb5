package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/api/option"

	"skknicheck/internal/config"
	"skknicheck/internal/sheet"
	"skknicheck/internal/store/csvfile"
	"skknicheck/internal/store/gsheets"
	"skknicheck/internal/store/sqlitedb"
)

// Source yields the raw input table.
type Source interface {
	Read(ctx context.Context) (sheet.Table, error)
}

// Sink merges a status column back into the data store.
type Sink interface {
	WriteStatus(ctx context.Context, update sheet.StatusUpdate) error
}

// Store is a backend that is both source and sink.
type Store interface {
	Source
	Sink
	Close() error
}

// Options tweaks backend construction.
type Options struct {
	Logger *slog.Logger
	// SheetsClientOptions overrides Google API client options (endpoint,
	// credentials). Used by tests and for alternative auth.
	SheetsClientOptions []option.ClientOption
}

// Open constructs the backend selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config, opts Options) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendGSheets:
		creds, err := sheetsCredentials(cfg.Store.Sheets)
		if err != nil {
			return nil, err
		}
		gopts := []gsheets.Option{gsheets.WithLogger(opts.Logger)}
		if len(opts.SheetsClientOptions) > 0 {
			gopts = append(gopts, gsheets.WithClientOptions(opts.SheetsClientOptions...))
		}
		s, err := gsheets.Open(ctx, gsheets.Config{
			SpreadsheetKey:  cfg.Store.Sheets.SpreadsheetKey,
			InputGID:        cfg.Store.Sheets.InputGID,
			OutputGID:       cfg.Store.Sheets.OutputGID,
			CredentialsJSON: creds,
		}, gopts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendCSV:
		s, err := csvfile.New(cfg.Store.CSV.InputPath, cfg.Store.CSV.OutputPath, opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := sqlitedb.Open(ctx, cfg.Store.SQLite.Path, cfg.Store.SQLite.Table, opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("store: unsupported backend %q", cfg.Store.Backend)
	}
}

// Columns converts configured header names to the sheet mapping.
func Columns(cfg *config.Config) sheet.Columns {
	return sheet.Columns{
		Scheme: cfg.Store.Columns.Scheme,
		Number: cfg.Store.Columns.Number,
		Year:   cfg.Store.Columns.Year,
		Status: cfg.Store.Columns.Status,
	}
}

func sheetsCredentials(cfg config.Sheets) ([]byte, error) {
	if cfg.CredentialsJSON != "" {
		return []byte(cfg.CredentialsJSON), nil
	}
	if cfg.CredentialsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}
