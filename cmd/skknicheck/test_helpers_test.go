package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"skknicheck/internal/config"
	"skknicheck/internal/search"
	"skknicheck/internal/testsupport"
)

var scenarioRows = [][]string{
	{"Nama Skema", "Nomor SKKNI", "Tahun SKKNI"},
	{"A", "12", "2018"},
	{"", "", ""},
	{"C", "12", "2018"},
}

type fakeSerp struct {
	srv   *httptest.Server
	calls atomic.Int32
}

// newFakeSerp answers every query with one hit carrying snippet.
func newFakeSerp(t *testing.T, snippet string) *fakeSerp {
	t.Helper()
	f := &fakeSerp{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if r.URL.Path != "/search.json" || r.URL.Query().Get("api_key") == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"organic_results": []search.Result{{Title: "SKKNI " + r.URL.Query().Get("q"), Snippet: snippet}},
		})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

type cliEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLIEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliEnv {
	t.Helper()
	base := testsupport.IsolateEnv(t)
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(base, "skknicheck.toml")
	testsupport.WriteConfig(t, configPath, cfg)
	return &cliEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
