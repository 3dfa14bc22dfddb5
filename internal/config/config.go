package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state and log directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
	EnvFile  string `toml:"env_file"`
}

// Search contains configuration for SerpAPI lookups and request pacing.
type Search struct {
	APIKey              string  `toml:"api_key"`
	BaseURL             string  `toml:"base_url"`
	Site                string  `toml:"site"`
	Language            string  `toml:"language"`
	ResultCount         int     `toml:"result_count"`
	Retries             int     `toml:"retries"`
	RetryBackoffSeconds float64 `toml:"retry_backoff_seconds"`
	TimeoutSeconds      float64 `toml:"timeout_seconds"`
	RateLimitSeconds    float64 `toml:"rate_limit_seconds"`
}

// Columns names the table headers the reconciler reads and writes.
type Columns struct {
	Scheme string `toml:"scheme"`
	Number string `toml:"number"`
	Year   string `toml:"year"`
	Status string `toml:"status"`
}

// Sheets contains configuration for the Google Sheets backend.
type Sheets struct {
	SpreadsheetKey  string `toml:"spreadsheet_key"`
	InputGID        int64  `toml:"input_gid"`
	OutputGID       int64  `toml:"output_gid"`
	CredentialsJSON string `toml:"credentials_json"`
	CredentialsFile string `toml:"credentials_file"`
	BaseURL         string `toml:"base_url"`
}

// CSV contains configuration for the local CSV backend.
type CSV struct {
	InputPath  string `toml:"input_path"`
	OutputPath string `toml:"output_path"`
}

// SQLite contains configuration for the SQLite backend.
type SQLite struct {
	Path  string `toml:"path"`
	Table string `toml:"table"`
}

// Store selects the record backend and carries its settings.
type Store struct {
	Backend string  `toml:"backend"`
	Columns Columns `toml:"columns"`
	Sheets  Sheets  `toml:"sheets"`
	CSV     CSV     `toml:"csv"`
	SQLite  SQLite  `toml:"sqlite"`
}

// Email contains SMTP delivery settings for revocation alerts.
type Email struct {
	Host       string   `toml:"host"`
	Port       int      `toml:"port"`
	Username   string   `toml:"username"`
	Password   string   `toml:"password"`
	From       string   `toml:"from"`
	Recipients []string `toml:"recipients"`
}

// Notifications contains configuration for alert delivery channels.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Email          Email  `toml:"email"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for skknicheck.
//
// Configuration sections by subsystem:
//   - Paths: state (lock) and log directories
//   - Search: SerpAPI credentials, retry policy and lookup pacing
//   - Store: record backend (gsheets, csv, sqlite) and header names
//   - Notifications: SMTP email and ntfy push settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Search        Search        `toml:"search"`
	Store         Store         `toml:"store"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Values from the
// .env file and the process environment override the file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFile(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("skknicheck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the run lock file location inside the state directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "skknicheck.lock")
}

// RetryBackoff returns the linear backoff base between search attempts.
func (c *Config) RetryBackoff() time.Duration {
	return secondsToDuration(c.Search.RetryBackoffSeconds)
}

// AttemptTimeout returns the deadline applied to each search attempt.
func (c *Config) AttemptTimeout() time.Duration {
	return secondsToDuration(c.Search.TimeoutSeconds)
}

// RateLimitInterval returns the minimum spacing between lookups.
func (c *Config) RateLimitInterval() time.Duration {
	return secondsToDuration(c.Search.RateLimitSeconds)
}

// NotifyTimeout returns the HTTP timeout for push notifications.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

// EmailEnabled reports whether SMTP delivery is fully configured.
func (c *Config) EmailEnabled() bool {
	e := c.Notifications.Email
	return e.Host != "" && e.Username != "" && e.Password != "" && len(e.Recipients) > 0
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
