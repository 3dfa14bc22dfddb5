package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"skknicheck/internal/config"
)

// EnvKeys lists every environment variable the config loader reads.
var EnvKeys = []string{
	"SERPAPI_API_KEY", "STORE_BACKEND", "SHEET_KEY", "GSHEETS_JSON",
	"INPUT_GID", "OUTPUT_GID", "CSV_INPUT", "CSV_OUTPUT", "SQLITE_PATH",
	"SQLITE_TABLE", "SEARCH_RETRIES", "SEARCH_BACKOFF", "SEARCH_TIMEOUT",
	"RATE_LIMIT_INTERVAL", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS",
	"RECIPIENTS", "NTFY_TOPIC", "LOG_LEVEL", "LOG_FORMAT",
}

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// IsolateEnv points HOME and the working directory at a temp dir and blanks
// every config env var, so a developer's .env or shell never leaks in.
func IsolateEnv(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Chdir(base)
	for _, key := range EnvKeys {
		t.Setenv(key, "")
	}
	return base
}

// NewConfig produces a CSV-backed config seeded with unique temp directories
// per test. Lookups are not spaced and retries do not back off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Search.APIKey = "test"
	cfgVal.Search.RateLimitSeconds = 0
	cfgVal.Search.RetryBackoffSeconds = 0
	cfgVal.Store.Backend = config.BackendCSV
	cfgVal.Store.CSV.InputPath = filepath.Join(base, "input.csv")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSearchEndpoint points lookups at a fake SerpAPI server.
func WithSearchEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.BaseURL = url
	}
}

// WithInputRows writes rows as the CSV input file.
func WithInputRows(rows [][]string) ConfigOption {
	return func(b *configBuilder) {
		WriteCSV(b.t, b.cfg.Store.CSV.InputPath, rows)
	}
}

// WithNtfyTopic enables push delivery to the given endpoint.
func WithNtfyTopic(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WriteConfig encodes cfg as TOML at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
