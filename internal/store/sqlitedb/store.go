package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"skknicheck/internal/logging"
	"skknicheck/internal/sheet"
)

// RevokedColumn holds the highlight flag (1 for revoked rows, 0 otherwise).
const RevokedColumn = "revoked"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store reads records from a SQLite table in rowid order and writes statuses
// back by rowid.
type Store struct {
	db     *sql.DB
	path   string
	table  string
	logger *slog.Logger

	rowids []int64
}

// Open connects to the database at path. The table must already exist.
func Open(ctx context.Context, path, table string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlitedb: database path is required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("sqlitedb: table name is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	var name string
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
	).Scan(&name)
	if err != nil {
		_ = db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlitedb: table %q not found in %s", table, path)
		}
		return nil, fmt.Errorf("sqlitedb: lookup table: %w", err)
	}

	return &Store{
		db:     db,
		path:   path,
		table:  table,
		logger: logging.NewComponentLogger(logger, "sqlitedb"),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Read returns every column except the revoked flag, rows in rowid order.
func (s *Store) Read(ctx context.Context) (sheet.Table, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT rowid, * FROM %s ORDER BY rowid", quoteIdent(s.table)))
	if err != nil {
		return sheet.Table{}, fmt.Errorf("sqlitedb: select: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return sheet.Table{}, fmt.Errorf("sqlitedb: columns: %w", err)
	}
	keep := make([]int, 0, len(columns))
	var header []string
	for i, col := range columns {
		if i == 0 || strings.EqualFold(col, RevokedColumn) {
			continue
		}
		keep = append(keep, i)
		header = append(header, col)
	}

	table := sheet.Table{Header: header}
	var rowids []int64
	for rows.Next() {
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return sheet.Table{}, fmt.Errorf("sqlitedb: scan: %w", err)
		}
		id, ok := raw[0].(int64)
		if !ok {
			return sheet.Table{}, fmt.Errorf("sqlitedb: unexpected rowid type %T", raw[0])
		}
		rowids = append(rowids, id)
		cells := make([]string, len(keep))
		for j, idx := range keep {
			cells[j] = cellString(raw[idx])
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return sheet.Table{}, fmt.Errorf("sqlitedb: iterate: %w", err)
	}
	s.rowids = rowids
	s.logger.Debug("table read",
		logging.String("table", s.table),
		logging.Int("rows", len(rowids)),
	)
	return table, nil
}

// WriteStatus stores labels in the status column and the revoked flag in a
// dedicated column, adding either column when missing. All rows are updated
// in one transaction.
func (s *Store) WriteStatus(ctx context.Context, update sheet.StatusUpdate) error {
	if s.rowids == nil {
		if _, err := s.Read(ctx); err != nil {
			return err
		}
	}
	if len(update.Values) > len(s.rowids) {
		return fmt.Errorf("sqlitedb: %d statuses for %d rows", len(update.Values), len(s.rowids))
	}
	if err := s.ensureColumns(ctx, update.Header); err != nil {
		return err
	}

	revoked := make(map[int]bool, len(update.Highlight))
	for _, idx := range update.Highlight {
		revoked[idx] = true
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = ?, %s = ? WHERE rowid = ?",
		quoteIdent(s.table), quoteIdent(update.Header), quoteIdent(RevokedColumn))

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		prepared, err := tx.PrepareContext(ctx, stmt)
		if err != nil {
			return err
		}
		defer prepared.Close()
		for i, label := range update.Values {
			flag := 0
			if revoked[i] {
				flag = 1
			}
			if _, err := prepared.ExecContext(ctx, label, flag, s.rowids[i]); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("sqlitedb: update statuses: %w", err)
	}
	s.logger.Info("status column written",
		logging.String("table", s.table),
		logging.Int("rows", len(update.Values)),
		logging.Int("revoked", len(update.Highlight)),
	)
	return nil
}

func (s *Store) ensureColumns(ctx context.Context, statusColumn string) error {
	existing, err := s.columnNames(ctx)
	if err != nil {
		return err
	}
	alters := []struct {
		name string
		decl string
	}{
		{statusColumn, "TEXT"},
		{RevokedColumn, "INTEGER NOT NULL DEFAULT 0"},
	}
	for _, alter := range alters {
		if existing[strings.ToLower(alter.name)] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(s.table), quoteIdent(alter.name), alter.decl)
		if err := retryOnBusy(ctx, func() error {
			_, execErr := s.db.ExecContext(ctx, stmt)
			return execErr
		}); err != nil {
			return fmt.Errorf("sqlitedb: add column %q: %w", alter.name, err)
		}
	}
	return nil
}

func (s *Store) columnNames(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(s.table)))
	if err != nil {
		return nil, fmt.Errorf("sqlitedb: table info: %w", err)
	}
	defer rows.Close()
	names := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("sqlitedb: scan table info: %w", err)
		}
		names[strings.ToLower(name)] = true
	}
	return names, rows.Err()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
