package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadEnvFile merges KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment are left untouched.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Search.APIKey, "SERPAPI_API_KEY")

	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Store.Sheets.SpreadsheetKey, "SHEET_KEY")
	setString(&c.Store.Sheets.CredentialsJSON, "GSHEETS_JSON")
	setString(&c.Store.CSV.InputPath, "CSV_INPUT")
	setString(&c.Store.CSV.OutputPath, "CSV_OUTPUT")
	setString(&c.Store.SQLite.Path, "SQLITE_PATH")
	setString(&c.Store.SQLite.Table, "SQLITE_TABLE")
	if err := setInt64(&c.Store.Sheets.InputGID, "INPUT_GID"); err != nil {
		return err
	}
	if err := setInt64(&c.Store.Sheets.OutputGID, "OUTPUT_GID"); err != nil {
		return err
	}

	if err := setInt(&c.Search.Retries, "SEARCH_RETRIES"); err != nil {
		return err
	}
	if err := setSeconds(&c.Search.RetryBackoffSeconds, "SEARCH_BACKOFF"); err != nil {
		return err
	}
	if err := setSeconds(&c.Search.TimeoutSeconds, "SEARCH_TIMEOUT"); err != nil {
		return err
	}
	if err := setSeconds(&c.Search.RateLimitSeconds, "RATE_LIMIT_INTERVAL"); err != nil {
		return err
	}

	email := &c.Notifications.Email
	setString(&email.Host, "SMTP_HOST")
	setString(&email.Username, "SMTP_USER")
	setString(&email.Password, "SMTP_PASS")
	if err := setInt(&email.Port, "SMTP_PORT"); err != nil {
		return err
	}
	if value, ok := lookupEnv("RECIPIENTS"); ok {
		email.Recipients = splitList(value)
	}
	setString(&c.Notifications.NtfyTopic, "NTFY_TOPIC")

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

func setString(target *string, key string) {
	if value, ok := lookupEnv(key); ok {
		*target = value
	}
}

func setInt(target *int, key string) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, value)
	}
	*target = parsed
	return nil
}

func setInt64(target *int64, key string) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, value)
	}
	*target = parsed
	return nil
}

// setSeconds accepts either a Go duration ("1.2s", "500ms") or a bare number
// of seconds.
func setSeconds(target *float64, key string) error {
	value, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		*target = d.Seconds()
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, value)
	}
	*target = parsed
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
