package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/geoknoesis/rdf-tabular/schema"
	"github.com/geoknoesis/rdf-tabular/tabular"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory store by default, got %s", cfg.Store.Driver)
	}
	opts, err := cfg.Defaults.FileOptions()
	if err != nil {
		t.Fatalf("FileOptions: %v", err)
	}
	if !opts.TreatFirstRowAsHeader || !opts.Predicate.PrefixHas {
		t.Errorf("expected header and has prefix by default, got %+v", opts)
	}
	if opts.Predicate.Casing != schema.CamelCase {
		t.Errorf("expected camelCase, got %s", opts.Predicate.Casing)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "relative instance namespace",
			modify:  func(c *Config) { c.Namespaces.Instance = "id/" },
			wantErr: true,
		},
		{
			name:    "namespace without separator",
			modify:  func(c *Config) { c.Namespaces.Run = "https://example.org/run" },
			wantErr: true,
		},
		{
			name:    "bad prefix IRI",
			modify:  func(c *Config) { c.Prefixes["ex"] = "https://example.org/a b" },
			wantErr: true,
		},
		{
			name:    "unknown casing",
			modify:  func(c *Config) { c.Defaults.Casing = "kebab" },
			wantErr: true,
		},
		{
			name:    "unknown delimiter",
			modify:  func(c *Config) { c.Defaults.Delimiter = "pipe" },
			wantErr: true,
		},
		{
			name:    "unknown store driver",
			modify:  func(c *Config) { c.Store.Driver = "postgres" },
			wantErr: true,
		},
		{
			name:    "missing listen address",
			modify:  func(c *Config) { c.Server.Listen = "" },
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
namespaces:
  instance: "https://data.example.com/id/"
prefixes:
  ex: "https://data.example.com/def/"
defaults:
  header: false
  delimiter: tab
  casing: snake_case
  datatypes:
    age: xsd:integer
store:
  driver: sqlite
  sqlite:
    path: /var/lib/rdftab/runs.db
watch:
  debounce: 2s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Namespaces.Instance != "https://data.example.com/id/" {
		t.Errorf("instance namespace = %s", cfg.Namespaces.Instance)
	}
	if cfg.Namespaces.Predicate != "https://example.org/def/" {
		t.Errorf("predicate namespace should keep default, got %s", cfg.Namespaces.Predicate)
	}
	if cfg.Prefixes["ex"] != "https://data.example.com/def/" || cfg.Prefixes["xsd"] == "" {
		t.Errorf("prefixes not merged: %v", cfg.Prefixes)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLite.Path != "/var/lib/rdftab/runs.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("debounce = %v", cfg.Watch.Debounce)
	}

	opts, err := cfg.Defaults.FileOptions()
	if err != nil {
		t.Fatalf("FileOptions: %v", err)
	}
	if opts.TreatFirstRowAsHeader {
		t.Error("header: false should disable the header row")
	}
	if !opts.Predicate.PrefixHas {
		t.Error("prefix_has should keep its default")
	}
	if opts.Delimiter != tabular.DelimiterTab || opts.Predicate.Casing != schema.SnakeCase {
		t.Errorf("options = %+v", opts)
	}
	if opts.Datatypes["age"] != "xsd:integer" {
		t.Errorf("datatypes = %v", opts.Datatypes)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("store: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Server.Listen = ":9999"

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Server.Listen != ":9999" {
		t.Errorf("listen = %s", loaded.Server.Listen)
	}
	if loaded.Watch.Debounce != cfg.Watch.Debounce {
		t.Errorf("debounce = %v, want %v", loaded.Watch.Debounce, cfg.Watch.Debounce)
	}
}

func TestMergeKeepsUnsetFields(t *testing.T) {
	cfg := DefaultConfig()
	no := false
	cfg.Merge(&Config{Defaults: DefaultsConfig{PrefixHas: &no}, Watch: WatchConfig{Patterns: []string{"*.csv"}}})

	if *cfg.Defaults.PrefixHas {
		t.Error("prefix_has should be overridden")
	}
	if !*cfg.Defaults.Header {
		t.Error("header should keep its default")
	}
	if len(cfg.Watch.Patterns) != 1 || cfg.Watch.Patterns[0] != "*.csv" {
		t.Errorf("patterns = %v", cfg.Watch.Patterns)
	}
	cfg.Merge(nil)
}

func testLoader(home, cwd string, env map[string]string) *Loader {
	l := NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.homeDir = func() (string, error) { return home, nil }
	l.workDir = func() (string, error) { return cwd, nil }
	l.lookup = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	return l
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLayers(t *testing.T) {
	root := t.TempDir()
	home := filepath.Join(root, "home")
	project := filepath.Join(root, "project")
	cwd := filepath.Join(project, "data", "incoming")
	if err := os.MkdirAll(cwd, 0755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
server:
  listen: ":7000"
defaults:
  casing: PascalCase
store:
  driver: sqlite
  sqlite:
    path: user.db
`)
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
defaults:
  casing: SHOUT_CASE
`)

	cfg, err := testLoader(home, cwd, map[string]string{EnvSQLitePath: "env.db"}).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Listen != ":7000" {
		t.Errorf("user layer lost: listen = %s", cfg.Server.Listen)
	}
	if cfg.Defaults.Casing != "SHOUT_CASE" {
		t.Errorf("project layer should win: casing = %s", cfg.Defaults.Casing)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLite.Path != "env.db" {
		t.Errorf("environment should win: store = %+v", cfg.Store)
	}
}

func TestLoaderExplicitFile(t *testing.T) {
	root := t.TempDir()
	explicit := filepath.Join(root, "custom.yaml")
	writeFile(t, explicit, "server:\n  listen: \":6000\"\n")
	writeFile(t, filepath.Join(root, ProjectConfigFile), "server:\n  listen: \":5000\"\n")

	l := testLoader(filepath.Join(root, "nohome"), root, nil)
	cfg, err := l.LoadWithFile(explicit)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if cfg.Server.Listen != ":6000" {
		t.Errorf("listen = %s", cfg.Server.Listen)
	}

	if _, err := l.LoadWithFile(filepath.Join(root, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit file")
	}
}

func TestLoaderRejectsInvalidResult(t *testing.T) {
	root := t.TempDir()
	l := testLoader(root, root, map[string]string{EnvStoreDriver: "cassandra"})
	if _, err := l.Load(); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := testLoader(home, home, nil)

	path, err := l.EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not created: %v", err)
	}
	again, err := l.EnsureUserConfig()
	if err != nil || again != path {
		t.Errorf("second call = %s, %v", again, err)
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Defaults.Datatypes = map[string]string{"age": "xsd:integer"}
	ec, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig() error = %v", err)
	}
	if ec.Namespaces != cfg.Namespaces {
		t.Errorf("namespaces = %+v", ec.Namespaces)
	}
	if ec.Defaults.Datatypes["age"] != "xsd:integer" {
		t.Errorf("datatypes = %v", ec.Defaults.Datatypes)
	}
}
