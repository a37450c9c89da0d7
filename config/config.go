// Package config provides configuration loading and management for rdftab.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/rdf-tabular/dataset"
	"github.com/geoknoesis/rdf-tabular/engine"
	"github.com/geoknoesis/rdf-tabular/ident"
	"github.com/geoknoesis/rdf-tabular/rdf"
	"github.com/geoknoesis/rdf-tabular/runstore"
	"github.com/geoknoesis/rdf-tabular/schema"
	"github.com/geoknoesis/rdf-tabular/tabular"
)

// Config represents the complete rdftab configuration
type Config struct {
	Namespaces ident.Namespaces  `yaml:"namespaces"`
	Prefixes   map[string]string `yaml:"prefixes"`
	Defaults   DefaultsConfig    `yaml:"defaults"`
	Store      runstore.Config   `yaml:"store"`
	Server     ServerConfig      `yaml:"server"`
	Watch      WatchConfig       `yaml:"watch"`
}

// DefaultsConfig holds the file options applied when a request carries none.
// Pointer fields distinguish "unset" from false when layers are merged.
type DefaultsConfig struct {
	Header       *bool             `yaml:"header,omitempty"`
	Delimiter    string            `yaml:"delimiter,omitempty"`
	PrefixHas    *bool             `yaml:"prefix_has,omitempty"`
	Casing       string            `yaml:"casing,omitempty"`
	WhenNoHeader string            `yaml:"when_no_header,omitempty"`
	Datatypes    map[string]string `yaml:"datatypes,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	// Listen is the address passed to net/http (default: 127.0.0.1:8080)
	Listen string `yaml:"listen"`
}

// WatchConfig configures the directory watcher
type WatchConfig struct {
	Dir string `yaml:"dir"`
	// Patterns are doublestar globs matched against paths relative to Dir
	Patterns []string `yaml:"patterns"`
	// Debounce delays a conversion until a file stops changing
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	header, prefixHas := true, true
	return &Config{
		Namespaces: ident.Namespaces{
			Instance:  "https://example.org/id/",
			Predicate: "https://example.org/def/",
			Run:       "https://example.org/run/",
		},
		Prefixes: map[string]string{
			"def": "https://example.org/def/",
			"xsd": rdf.XSDNamespace,
		},
		Defaults: DefaultsConfig{
			Header:       &header,
			PrefixHas:    &prefixHas,
			Casing:       string(schema.CamelCase),
			WhenNoHeader: string(schema.Ordinal),
		},
		Store:  runstore.DefaultConfig(),
		Server: ServerConfig{Listen: "127.0.0.1:8080"},
		Watch: WatchConfig{
			Dir:      ".",
			Patterns: []string{"**/*.csv", "**/*.tsv", "**/*.xlsx"},
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := c.Namespaces.Validate(); err != nil {
		return fmt.Errorf("namespaces: %w", err)
	}
	for prefix, iri := range c.Prefixes {
		if err := rdf.ValidateIRI(iri); err != nil {
			return fmt.Errorf("prefixes.%s: %w", prefix, err)
		}
	}
	if _, err := c.Defaults.FileOptions(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Server.Listen) == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// FileOptions converts the defaults into dataset options.
func (d DefaultsConfig) FileOptions() (dataset.FileOptions, error) {
	opts := dataset.DefaultFileOptions()
	if d.Header != nil {
		opts.TreatFirstRowAsHeader = *d.Header
	}
	if d.PrefixHas != nil {
		opts.Predicate.PrefixHas = *d.PrefixHas
	}
	var err error
	if d.Delimiter != "" {
		if opts.Delimiter, err = tabular.ParseDelimiter(d.Delimiter); err != nil {
			return opts, err
		}
	}
	if d.Casing != "" {
		if opts.Predicate.Casing, err = schema.ParseCasing(d.Casing); err != nil {
			return opts, err
		}
	}
	if d.WhenNoHeader != "" {
		if opts.Predicate.WhenNoHeader, err = schema.ParseHeaderMode(d.WhenNoHeader); err != nil {
			return opts, err
		}
	}
	if len(d.Datatypes) > 0 {
		opts.Datatypes = make(map[string]string, len(d.Datatypes))
		for k, v := range d.Datatypes {
			opts.Datatypes[k] = v
		}
	}
	return opts, nil
}

// EngineConfig returns the engine view of the configuration.
func (c *Config) EngineConfig() (engine.Config, error) {
	opts, err := c.Defaults.FileOptions()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{Namespaces: c.Namespaces, Prefixes: c.Prefixes, Defaults: opts}, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	layer, err := readLayer(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Merge(layer)
	return config, nil
}

// readLayer parses a file without applying defaults, so that Merge only
// sees the keys the file actually sets.
func readLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	layer := &Config{}
	if err := yaml.Unmarshal(data, layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return layer, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Namespaces
	if other.Namespaces.Instance != "" {
		c.Namespaces.Instance = other.Namespaces.Instance
	}
	if other.Namespaces.Predicate != "" {
		c.Namespaces.Predicate = other.Namespaces.Predicate
	}
	if other.Namespaces.Run != "" {
		c.Namespaces.Run = other.Namespaces.Run
	}

	// Prefixes add to or replace individual entries
	if len(other.Prefixes) > 0 && c.Prefixes == nil {
		c.Prefixes = make(map[string]string, len(other.Prefixes))
	}
	for prefix, iri := range other.Prefixes {
		c.Prefixes[prefix] = iri
	}

	// Defaults
	if other.Defaults.Header != nil {
		v := *other.Defaults.Header
		c.Defaults.Header = &v
	}
	if other.Defaults.PrefixHas != nil {
		v := *other.Defaults.PrefixHas
		c.Defaults.PrefixHas = &v
	}
	if other.Defaults.Delimiter != "" {
		c.Defaults.Delimiter = other.Defaults.Delimiter
	}
	if other.Defaults.Casing != "" {
		c.Defaults.Casing = other.Defaults.Casing
	}
	if other.Defaults.WhenNoHeader != "" {
		c.Defaults.WhenNoHeader = other.Defaults.WhenNoHeader
	}
	if len(other.Defaults.Datatypes) > 0 {
		if c.Defaults.Datatypes == nil {
			c.Defaults.Datatypes = make(map[string]string, len(other.Defaults.Datatypes))
		}
		for k, v := range other.Defaults.Datatypes {
			c.Defaults.Datatypes[k] = v
		}
	}

	// Store
	if other.Store.Driver != "" {
		c.Store.Driver = other.Store.Driver
	}
	if other.Store.NATS.URL != "" {
		c.Store.NATS.URL = other.Store.NATS.URL
	}
	if other.Store.NATS.Bucket != "" {
		c.Store.NATS.Bucket = other.Store.NATS.Bucket
	}
	if other.Store.SQLite.Path != "" {
		c.Store.SQLite.Path = other.Store.SQLite.Path
	}

	// Server
	if other.Server.Listen != "" {
		c.Server.Listen = other.Server.Listen
	}

	// Watch
	if other.Watch.Dir != "" {
		c.Watch.Dir = other.Watch.Dir
	}
	if len(other.Watch.Patterns) > 0 {
		c.Watch.Patterns = append([]string(nil), other.Watch.Patterns...)
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}
