package gsheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"skknicheck/internal/logging"
	"skknicheck/internal/sheet"
)

// HighlightColor is the soft red painted behind revoked cells.
var HighlightColor = sheets.Color{Red: 0.95, Green: 0.80, Blue: 0.80}

// Config identifies the spreadsheet and worksheets to use.
type Config struct {
	SpreadsheetKey string
	InputGID       int64
	OutputGID      int64
	// CredentialsJSON is a Google service account key.
	CredentialsJSON []byte
}

// Option customizes the store.
type Option func(*options)

type options struct {
	clientOptions []option.ClientOption
	logger        *slog.Logger
}

// WithClientOptions replaces the credential-derived client options. Tests use
// it to point the client at a local endpoint without authentication.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type worksheet struct {
	id      int64
	title   string
	rows    int64
	columns int64
}

// Store reads records from one worksheet and writes statuses to another (or
// the same) worksheet of a Google spreadsheet.
type Store struct {
	svc    *sheets.Service
	key    string
	input  worksheet
	output worksheet
	logger *slog.Logger

	table  sheet.Table
	loaded bool
}

// Open authenticates and resolves the configured worksheet gids to titles.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	key := strings.TrimSpace(cfg.SpreadsheetKey)
	if key == "" {
		return nil, errors.New("gsheets: spreadsheet key is required")
	}

	clientOpts := o.clientOptions
	if len(clientOpts) == 0 {
		if len(cfg.CredentialsJSON) == 0 {
			return nil, errors.New("gsheets: service account credentials are required")
		}
		creds, err := google.CredentialsFromJSON(ctx, cfg.CredentialsJSON, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("gsheets: parse service account: %w", err)
		}
		clientOpts = []option.ClientOption{option.WithCredentials(creds)}
	}
	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gsheets: create service: %w", err)
	}

	s := &Store{
		svc:    svc,
		key:    key,
		logger: logging.NewComponentLogger(o.logger, "gsheets"),
	}
	if err := s.resolve(ctx, cfg.InputGID, cfg.OutputGID); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) resolve(ctx context.Context, inputGID, outputGID int64) error {
	doc, err := s.svc.Spreadsheets.Get(s.key).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gsheets: open spreadsheet: %w", err)
	}
	found := make(map[int64]worksheet, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		ws := worksheet{id: sh.Properties.SheetId, title: sh.Properties.Title}
		if grid := sh.Properties.GridProperties; grid != nil {
			ws.rows = grid.RowCount
			ws.columns = grid.ColumnCount
		}
		found[ws.id] = ws
	}
	var ok bool
	if s.input, ok = found[inputGID]; !ok {
		return fmt.Errorf("gsheets: worksheet gid %d not found", inputGID)
	}
	if s.output, ok = found[outputGID]; !ok {
		return fmt.Errorf("gsheets: worksheet gid %d not found", outputGID)
	}
	s.logger.Debug("worksheets resolved",
		logging.String("input", s.input.title),
		logging.String("output", s.output.title),
	)
	return nil
}

// Read fetches the input worksheet as formatted cell text.
func (s *Store) Read(ctx context.Context) (sheet.Table, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.key, quoteTitle(s.input.title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return sheet.Table{}, fmt.Errorf("gsheets: read %s: %w", s.input.title, err)
	}
	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				cells[j] = fmt.Sprint(cell)
			}
		}
		grid[i] = cells
	}
	s.table = sheet.FromValues(grid)
	s.loaded = true
	s.logger.Debug("worksheet read",
		logging.String("worksheet", s.input.title),
		logging.Int("rows", len(s.table.Rows)),
	)
	return s.table, nil
}

// WriteStatus merges the status column into the output worksheet and paints
// revoked rows. When output and input are the same worksheet only the status
// column is written; otherwise the whole merged table is written from A1.
func (s *Store) WriteStatus(ctx context.Context, update sheet.StatusUpdate) error {
	var (
		rng    string
		values [][]string
		width  = int64(update.Width())
	)
	if s.output.id == s.input.id {
		start := 2
		cells := update.Values
		if update.WriteHeader {
			start = 1
			cells = append([]string{update.Header}, update.Values...)
		}
		col := columnLetter(update.Column)
		rng = fmt.Sprintf("%s!%s%d:%s%d", quoteTitle(s.output.title), col, start, col, start+len(cells)-1)
		values = make([][]string, len(cells))
		for i, v := range cells {
			values[i] = []string{v}
		}
	} else {
		if !s.loaded {
			return errors.New("gsheets: input must be read before writing to a separate worksheet")
		}
		values = sheet.Apply(s.table, update).Values()
		if w := int64(len(values[0])); w > width {
			width = w
		}
		rng = quoteTitle(s.output.title) + "!A1"
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.ensureGrid(ctx, int64(len(update.Values)+1), width); err != nil {
		return err
	}

	body := &sheets.ValueRange{Values: toInterfaces(values)}
	if _, err := s.svc.Spreadsheets.Values.Update(s.key, rng, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("gsheets: update %s: %w", rng, err)
	}
	s.logger.Info("status column written",
		logging.String("worksheet", s.output.title),
		logging.String("range", rng),
		logging.Int("rows", len(update.Values)),
	)

	return s.highlight(ctx, update)
}

func (s *Store) ensureGrid(ctx context.Context, rows, columns int64) error {
	var requests []*sheets.Request
	if columns > s.output.columns {
		requests = append(requests, appendDimension(s.output.id, "COLUMNS", columns-s.output.columns))
	}
	if rows > s.output.rows {
		requests = append(requests, appendDimension(s.output.id, "ROWS", rows-s.output.rows))
	}
	if len(requests) == 0 {
		return nil
	}
	if err := s.batch(ctx, requests); err != nil {
		return fmt.Errorf("gsheets: grow grid: %w", err)
	}
	if columns > s.output.columns {
		s.output.columns = columns
	}
	if rows > s.output.rows {
		s.output.rows = rows
	}
	if s.input.id == s.output.id {
		s.input = s.output
	}
	return nil
}

func (s *Store) highlight(ctx context.Context, update sheet.StatusUpdate) error {
	if len(update.Highlight) == 0 || len(update.HighlightColumns) == 0 {
		return nil
	}
	requests := make([]*sheets.Request, 0, len(update.Highlight)*len(update.HighlightColumns))
	for _, row := range update.Highlight {
		for _, col := range update.HighlightColumns {
			requests = append(requests, paintCell(s.output.id, int64(row)+1, int64(col)))
		}
	}
	if err := s.batch(ctx, requests); err != nil {
		return fmt.Errorf("gsheets: highlight revoked rows: %w", err)
	}
	s.logger.Info("revoked rows highlighted",
		logging.String("worksheet", s.output.title),
		logging.Int("rows", len(update.Highlight)),
	)
	return nil
}

func (s *Store) batch(ctx context.Context, requests []*sheets.Request) error {
	_, err := s.svc.Spreadsheets.BatchUpdate(s.key, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

// Close releases nothing; the HTTP client is shared.
func (s *Store) Close() error { return nil }

func appendDimension(sheetID int64, dimension string, length int64) *sheets.Request {
	return &sheets.Request{
		AppendDimension: &sheets.AppendDimensionRequest{
			SheetId:         sheetID,
			Dimension:       dimension,
			Length:          length,
			ForceSendFields: []string{"SheetId"},
		},
	}
}

func paintCell(sheetID, row, col int64) *sheets.Request {
	color := HighlightColor
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    row,
				EndRowIndex:      row + 1,
				StartColumnIndex: col,
				EndColumnIndex:   col + 1,
				ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{BackgroundColor: &color},
			},
			Fields: "userEnteredFormat.backgroundColor",
		},
	}
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// columnLetter converts a 0-based column index to A1 notation.
func columnLetter(idx int) string {
	var out []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		out = append([]byte{byte('A' + (n-1)%26)}, out...)
	}
	return string(out)
}

func toInterfaces(values [][]string) [][]interface{} {
	out := make([][]interface{}, len(values))
	for i, row := range values {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
