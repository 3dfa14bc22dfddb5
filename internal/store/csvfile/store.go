package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"skknicheck/internal/fileutil"
	"skknicheck/internal/logging"
	"skknicheck/internal/sheet"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Store reads a CSV export of the worksheet and writes the merged table to
// OutputPath. Highlighting has no CSV representation and is skipped.
type Store struct {
	inputPath  string
	outputPath string
	logger     *slog.Logger

	table  sheet.Table
	loaded bool
}

// New builds a store. An empty outputPath writes back to inputPath.
func New(inputPath, outputPath string, logger *slog.Logger) (*Store, error) {
	inputPath = strings.TrimSpace(inputPath)
	if inputPath == "" {
		return nil, errors.New("csvfile: input path is required")
	}
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		outputPath = inputPath
	}
	return &Store{
		inputPath:  inputPath,
		outputPath: outputPath,
		logger:     logging.NewComponentLogger(logger, "csvfile"),
	}, nil
}

// Read parses the input file. A leading UTF-8 byte order mark is dropped.
func (s *Store) Read(ctx context.Context) (sheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Table{}, err
	}
	data, err := os.ReadFile(s.inputPath)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("csvfile: read %s: %w", s.inputPath, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	var grid [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sheet.Table{}, fmt.Errorf("csvfile: parse %s: %w", s.inputPath, err)
		}
		grid = append(grid, row)
	}
	s.table = sheet.FromValues(grid)
	s.loaded = true
	s.logger.Debug("csv read",
		logging.String("path", s.inputPath),
		logging.Int("rows", len(s.table.Rows)),
	)
	return s.table, nil
}

// WriteStatus merges the status column into the last read table and replaces
// the output file atomically.
func (s *Store) WriteStatus(ctx context.Context, update sheet.StatusUpdate) error {
	if !s.loaded {
		if _, err := s.Read(ctx); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	merged := sheet.Apply(s.table, update)
	err := fileutil.WriteAtomic(s.outputPath, 0o644, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.WriteAll(merged.Values()); err != nil {
			return err
		}
		return writer.Error()
	})
	if err != nil {
		return fmt.Errorf("csvfile: write %s: %w", s.outputPath, err)
	}
	s.logger.Info("status column written",
		logging.String("path", s.outputPath),
		logging.Int("rows", len(update.Values)),
		logging.Int("revoked", len(update.Highlight)),
	)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
