// Package runstore persists stored runs keyed by graph IRI.
//
// Every backend implements last-write-wins Put, a List sorted by creation
// time (newest first), Get and Delete. Operations act on one run at a time
// and either apply completely or not at all.
package runstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/geoknoesis/rdf-tabular/dataset"
)

// Common store errors.
var (
	// ErrNotFound is returned when no run exists for a graph IRI.
	ErrNotFound = errors.New("run not found")
	// ErrInvalidRun is returned by Put for runs without a graph IRI.
	ErrInvalidRun = errors.New("run has no graph identifier")
)

// Store is the run persistence contract.
type Store interface {
	Put(ctx context.Context, run *dataset.StoredRun) error
	List(ctx context.Context) ([]dataset.RunSummary, error)
	Get(ctx context.Context, graphIRI string) (*dataset.StoredRun, error)
	Delete(ctx context.Context, graphIRI string) error
	Close() error
}

// Key encodes a graph IRI as an opaque token safe for KV keys and URL paths.
func Key(graphIRI string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(graphIRI))
}

// ParseKey reverses Key.
func ParseKey(key string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("invalid run key %q: %w", key, err)
	}
	return string(raw), nil
}

// Driver names.
const (
	DriverMemory = "memory"
	DriverNATS   = "nats"
	DriverSQLite = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	Driver string       `yaml:"driver"`
	NATS   NATSConfig   `yaml:"nats"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// NATSConfig configures the JetStream KV backend.
type NATSConfig struct {
	URL    string `yaml:"url"`
	Bucket string `yaml:"bucket"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() Config {
	return Config{
		Driver: DriverMemory,
		NATS:   NATSConfig{URL: "nats://127.0.0.1:4222", Bucket: DefaultBucket},
		SQLite: SQLiteConfig{Path: "rdf-tabular.db"},
	}
}

// Validate checks the selected driver has what it needs.
func (c Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case DriverMemory:
		return nil
	case DriverNATS:
		if strings.TrimSpace(c.NATS.URL) == "" {
			return fmt.Errorf("store.nats.url is required")
		}
		return nil
	case DriverSQLite:
		if strings.TrimSpace(c.SQLite.Path) == "" {
			return fmt.Errorf("store.sqlite.path is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Driver) {
	case DriverNATS:
		logger.Debug("Opening NATS run store", "url", cfg.NATS.URL, "bucket", cfg.NATS.Bucket)
		return DialNATS(ctx, cfg.NATS.URL, cfg.NATS.Bucket)
	case DriverSQLite:
		logger.Debug("Opening SQLite run store", "path", cfg.SQLite.Path)
		return OpenSQLite(ctx, cfg.SQLite.Path)
	default:
		logger.Debug("Using in-memory run store")
		return NewMemory(), nil
	}
}

func sortSummaries(list []dataset.RunSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].GraphIRI < list[j].GraphIRI
	})
}

func checkRun(run *dataset.StoredRun) error {
	if run == nil || strings.TrimSpace(run.GraphIRI) == "" {
		return ErrInvalidRun
	}
	return nil
}
