package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
search:
  max_results: 200
  empty_query: scan_all
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Search.MaxResults != 200 || cfg.Search.EmptyQuery != "scan_all" {
		t.Errorf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.Search.DefaultLimit != 50 {
		t.Errorf("default_limit should default to 50, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	path := writeConfig(t, `
debug: true
storage:
  database_path: "test.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/db/ordbok.db"
corpus:
  sources: ["./dev/words.json", "/abs/words.csv", "shared/words.xlsx"]
  watch: true
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "ordbok.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	if len(cfg.Corpus.Sources) != 3 {
		t.Fatalf("corpus sources: got %d", len(cfg.Corpus.Sources))
	}
	if want := filepath.Join(dir, "dev", "words.json"); cfg.Corpus.Sources[0] != want {
		t.Errorf("source = %s, want %s", cfg.Corpus.Sources[0], want)
	}
	if cfg.Corpus.Sources[1] != "/abs/words.csv" {
		t.Errorf("absolute source changed: %s", cfg.Corpus.Sources[1])
	}
	if want := filepath.Join(dir, "shared", "words.xlsx"); cfg.Corpus.Sources[2] != want {
		t.Errorf("bare relative source = %s, want %s", cfg.Corpus.Sources[2], want)
	}
	if !cfg.Corpus.Watch {
		t.Error("watch should be true")
	}
}

func TestLoad_invalidEmptyQuery(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "test.db"
search:
  empty_query: everything
`)
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown empty_query policy")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestLoad_envOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
storage:
  database_path: "test.db"
`)
	t.Setenv(EnvPort, "9191")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvDatabasePath, "/tmp/ordbok-env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.Server.Port)
	}
	if !cfg.Debug {
		t.Error("debug should be overridden to true")
	}
	if cfg.Storage.DatabasePath != "/tmp/ordbok-env.db" {
		t.Errorf("database_path = %s", cfg.Storage.DatabasePath)
	}
}

func TestApplyEnv_invalidPort(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	if err := ApplyEnv(&Config{}); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Search.MaxResults != 1000 {
		t.Errorf("default max_results: got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.EmptyQuery != "stats_only" {
		t.Errorf("default empty_query: got %s", cfg.Search.EmptyQuery)
	}
	if got := cfg.Corpus.Debounce(); got != 400*time.Millisecond {
		t.Errorf("default debounce: got %v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{":memory:", ":memory:"},
		{"/abs/path.db", "/abs/path.db"},
		{"./rel.db", "/cfg/rel.db"},
		{".", "/cfg"},
		{"data/words.json", "/cfg/data/words.json"},
		{"../shared/words.csv", "/shared/words.csv"},
		{"~/ordbok/words.json", filepath.Join(home, "ordbok", "words.json")},
		{"~", home},
	}
	for _, tt := range tests {
		if got := expandPath(tt.path, "/cfg"); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
		Corpus:  CorpusConfig{Sources: []string{"/tmp/words.json"}},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if len(loaded.Corpus.Sources) != 1 || loaded.Corpus.Sources[0] != "/tmp/words.json" {
		t.Errorf("loaded sources: got %v", loaded.Corpus.Sources)
	}
}
