package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/geoknoesis/rdf-tabular/dataset"
)

// SQLite keeps runs in two tables: one row per run and one row per quad,
// ordered by position.
type SQLite struct {
	db *sqlx.DB
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON;`,
	`CREATE TABLE IF NOT EXISTS runs (
		graph_iri TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS run_quads (
		graph_iri TEXT NOT NULL REFERENCES runs(graph_iri) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		subject TEXT NOT NULL,
		predicate TEXT NOT NULL,
		graph TEXT NOT NULL,
		object_kind TEXT NOT NULL,
		object_value TEXT NOT NULL,
		datatype TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (graph_iri, position)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
}

type runRow struct {
	GraphIRI  string `db:"graph_iri"`
	Filename  string `db:"filename"`
	CreatedAt int64  `db:"created_at"`
}

func (r runRow) summary() dataset.RunSummary {
	return dataset.RunSummary{
		GraphIRI:  r.GraphIRI,
		Filename:  r.Filename,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
}

type quadRow struct {
	GraphIRI string `db:"graph_iri"`
	Position int    `db:"position"`
	dataset.QuadRecord
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	db, err := sqlx.Open("sqlite", sqliteDSN(abs))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// sqliteDSN renders abs as a file: URI. Path characters such as '?', '#'
// and '%' are percent-encoded so they cannot start the query or fragment.
func sqliteDSN(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{
		Scheme:   "file",
		Path:     p,
		RawQuery: "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
	}
	return u.String()
}

func (s *SQLite) migrate(ctx context.Context) error {
	for i, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *SQLite) Put(ctx context.Context, run *dataset.StoredRun) error {
	if err := checkRun(run); err != nil {
		return err
	}
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (graph_iri, filename, created_at) VALUES (?, ?, ?)
			 ON CONFLICT(graph_iri) DO UPDATE SET filename = excluded.filename, created_at = excluded.created_at`,
			run.GraphIRI, run.Filename, run.CreatedAt.UnixNano()); err != nil {
			return fmt.Errorf("upsert run: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM run_quads WHERE graph_iri = ?`, run.GraphIRI); err != nil {
			return fmt.Errorf("clear quads: %w", err)
		}
		stmt, err := tx.PrepareNamedContext(ctx,
			`INSERT INTO run_quads (graph_iri, position, subject, predicate, graph, object_kind, object_value, datatype, language)
			 VALUES (:graph_iri, :position, :subject, :predicate, :graph, :object_kind, :object_value, :datatype, :language)`)
		if err != nil {
			return fmt.Errorf("prepare quad insert: %w", err)
		}
		defer stmt.Close()
		for i, rec := range run.Quads {
			if _, err := stmt.ExecContext(ctx, quadRow{GraphIRI: run.GraphIRI, Position: i, QuadRecord: rec}); err != nil {
				return fmt.Errorf("insert quad %d: %w", i, err)
			}
		}
		return nil
	})
}

func (s *SQLite) List(ctx context.Context) ([]dataset.RunSummary, error) {
	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT graph_iri, filename, created_at FROM runs ORDER BY created_at DESC, graph_iri ASC`); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	list := make([]dataset.RunSummary, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.summary())
	}
	return list, nil
}

func (s *SQLite) Get(ctx context.Context, graphIRI string) (*dataset.StoredRun, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `SELECT graph_iri, filename, created_at FROM runs WHERE graph_iri = ?`, graphIRI)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var quads []dataset.QuadRecord
	if err := s.db.SelectContext(ctx, &quads,
		`SELECT subject, predicate, graph, object_kind, object_value, datatype, language
		 FROM run_quads WHERE graph_iri = ? ORDER BY position`, graphIRI); err != nil {
		return nil, fmt.Errorf("get quads: %w", err)
	}
	summary := row.summary()
	return &dataset.StoredRun{
		GraphIRI:  summary.GraphIRI,
		Filename:  summary.Filename,
		CreatedAt: summary.CreatedAt,
		Quads:     quads,
	}, nil
}

func (s *SQLite) Delete(ctx context.Context, graphIRI string) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM run_quads WHERE graph_iri = ?`, graphIRI); err != nil {
			return fmt.Errorf("delete quads: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE graph_iri = ?`, graphIRI)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
