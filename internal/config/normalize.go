package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSearch()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSearch() {
	c.Search.APIKey = strings.TrimSpace(c.Search.APIKey)
	c.Search.BaseURL = strings.TrimRight(strings.TrimSpace(c.Search.BaseURL), "/")
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = defaultSearchBaseURL
	}
	c.Search.Site = strings.TrimSpace(c.Search.Site)
	if c.Search.Site == "" {
		c.Search.Site = defaultSearchSite
	}
	c.Search.Language = strings.TrimSpace(c.Search.Language)
	if c.Search.Language == "" {
		c.Search.Language = defaultSearchLanguage
	}
	if c.Search.ResultCount <= 0 {
		c.Search.ResultCount = defaultSearchResultCount
	}
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case "":
		c.Store.Backend = defaultStoreBackend
	case "sheets", "google", "googlesheets":
		c.Store.Backend = BackendGSheets
	case "sqlite3":
		c.Store.Backend = BackendSQLite
	}

	cols := &c.Store.Columns
	cols.Scheme = fallback(cols.Scheme, defaultSchemeColumn)
	cols.Number = fallback(cols.Number, defaultNumberColumn)
	cols.Year = fallback(cols.Year, defaultYearColumn)
	cols.Status = fallback(cols.Status, defaultStatusColumn)

	sheets := &c.Store.Sheets
	sheets.SpreadsheetKey = strings.TrimSpace(sheets.SpreadsheetKey)
	sheets.CredentialsJSON = strings.TrimSpace(sheets.CredentialsJSON)
	sheets.BaseURL = strings.TrimSpace(sheets.BaseURL)
	if sheets.OutputGID < 0 {
		sheets.OutputGID = sheets.InputGID
	}

	var err error
	if sheets.CredentialsFile, err = expandPath(strings.TrimSpace(sheets.CredentialsFile)); err != nil {
		return fmt.Errorf("store.sheets.credentials_file: %w", err)
	}
	if c.Store.CSV.InputPath, err = expandPath(strings.TrimSpace(c.Store.CSV.InputPath)); err != nil {
		return fmt.Errorf("store.csv.input_path: %w", err)
	}
	if strings.TrimSpace(c.Store.CSV.OutputPath) == "" {
		c.Store.CSV.OutputPath = c.Store.CSV.InputPath
	}
	if c.Store.CSV.OutputPath, err = expandPath(strings.TrimSpace(c.Store.CSV.OutputPath)); err != nil {
		return fmt.Errorf("store.csv.output_path: %w", err)
	}
	if c.Store.SQLite.Path, err = expandPath(strings.TrimSpace(c.Store.SQLite.Path)); err != nil {
		return fmt.Errorf("store.sqlite.path: %w", err)
	}
	c.Store.SQLite.Table = fallback(c.Store.SQLite.Table, defaultSQLiteTable)
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	email := &c.Notifications.Email
	email.Host = strings.TrimSpace(email.Host)
	email.Username = strings.TrimSpace(email.Username)
	email.From = strings.TrimSpace(email.From)
	if email.From == "" {
		email.From = email.Username
	}
	if email.Port <= 0 {
		email.Port = defaultSMTPPort
	}
	recipients := email.Recipients[:0]
	for _, r := range email.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	email.Recipients = recipients
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console", "text":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
