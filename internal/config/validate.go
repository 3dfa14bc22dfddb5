package config

import (
	"errors"
	"fmt"
	"regexp"
)

var sqlIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate ensures the configuration is structurally usable. Credentials are
// checked separately by ValidateCredentials so commands that never touch the
// network can still load a partial config.
func (c *Config) Validate() error {
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateCredentials reports the first missing credential needed for a full
// run: the SerpAPI key and whatever the selected store backend requires.
func (c *Config) ValidateCredentials() error {
	if err := c.ValidateSearchCredentials(); err != nil {
		return err
	}
	return c.ValidateStoreCredentials()
}

// ValidateSearchCredentials checks that a SerpAPI key is available.
func (c *Config) ValidateSearchCredentials() error {
	if c.Search.APIKey == "" {
		return fmt.Errorf("search.api_key is required. Set SERPAPI_API_KEY or edit %s (create with 'skknicheck config init')", c.configHint())
	}
	return nil
}

// ValidateStoreCredentials checks the selected backend has what it needs to
// open its source and sink.
func (c *Config) ValidateStoreCredentials() error {
	switch c.Store.Backend {
	case BackendGSheets:
		if c.Store.Sheets.SpreadsheetKey == "" {
			return errors.New("store.sheets.spreadsheet_key is required. Set SHEET_KEY")
		}
		if c.Store.Sheets.CredentialsJSON == "" && c.Store.Sheets.CredentialsFile == "" {
			return errors.New("google service account credentials are required. Set GSHEETS_JSON or store.sheets.credentials_file")
		}
	case BackendCSV:
		if c.Store.CSV.InputPath == "" {
			return errors.New("store.csv.input_path is required. Set CSV_INPUT")
		}
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required. Set SQLITE_PATH")
		}
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.Retries < 1 {
		return errors.New("search.retries must be at least 1")
	}
	if c.Search.RetryBackoffSeconds < 0 {
		return errors.New("search.retry_backoff_seconds must be non-negative")
	}
	if c.Search.TimeoutSeconds <= 0 {
		return errors.New("search.timeout_seconds must be positive")
	}
	if c.Search.RateLimitSeconds < 0 {
		return errors.New("search.rate_limit_seconds must be non-negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendGSheets, BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("store.backend: unsupported value %q (want gsheets, csv or sqlite)", c.Store.Backend)
	}
	if c.Store.Backend == BackendSQLite && !sqlIdentifier.MatchString(c.Store.SQLite.Table) {
		return fmt.Errorf("store.sqlite.table: %q is not a valid table name", c.Store.SQLite.Table)
	}
	if c.Store.Sheets.InputGID < 0 {
		return errors.New("store.sheets.input_gid must be non-negative")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.Email.Port > 65535 {
		return fmt.Errorf("notifications.email.port: %d out of range", c.Notifications.Email.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) configHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}
