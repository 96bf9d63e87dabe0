// Package store persists the raw, sentence and fact layers in one embedded
// DuckDB file. Each layer owns its table; derived layers only read upstream.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/farheen-shaikh530/releasehub/internal/metrics"
)

// Store is the fact store. It is safe for concurrent use; build stages are
// serialized by a single-writer lock.
type Store struct {
	db      *sql.DB
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	now     func() time.Time

	buildMu sync.Mutex
}

// Options configures a Store
type Options struct {
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
	Now     func() time.Time // defaults to time.Now
}

// Open opens (creating if needed) the DuckDB file at path and ensures the schema
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if dir := filepath.Dir(filepath.Clean(path)); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open duckdb %s", path)
	}

	s := New(db, opts)
	if err := s.bootstrap(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle without touching the schema
func New(db *sql.DB, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		db:      db,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
	}
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS raw (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL,
		url TEXT NOT NULL,
		payload TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sentences (
		id TEXT PRIMARY KEY,
		source TEXT,
		url TEXT,
		published_at TEXT,
		text TEXT,
		versions_json TEXT,
		vendors_json TEXT,
		has_version_kw BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS latest_version_fact (
		vendor TEXT PRIMARY KEY,
		version TEXT,
		fact_date TEXT,
		source TEXT,
		url TEXT,
		snippet TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS release_fact (
		id TEXT PRIMARY KEY,
		vendor TEXT,
		intent TEXT,
		fact_date TEXT,
		source TEXT,
		url TEXT,
		snippet TEXT,
		payload TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_stages (
		stage TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		row_count BIGINT,
		updated_at TIMESTAMP
	)`,
}

func (s *Store) bootstrap(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "create schema")
		}
	}
	return nil
}

// Counts is the row count of each layer
type Counts struct {
	Raw          int `json:"raw"`
	Sentences    int `json:"sentences"`
	Facts        int `json:"latest_version_facts"`
	ReleaseFacts int `json:"release_facts"`
}

// Counts reports how many rows each layer holds
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"raw", &c.Raw},
		{"sentences", &c.Sentences},
		{"latest_version_fact", &c.Facts},
		{"release_fact", &c.ReleaseFacts},
	}
	for _, t := range targets {
		n, err := s.count(ctx, t.table)
		if err != nil {
			return c, err
		}
		*t.dst = n
	}
	return c, nil
}

// count is only ever called with table names from this package
func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s", table)
	}
	return n, nil
}

func (s *Store) tableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?`, table).Scan(&n)
	if err != nil {
		return false, errors.Wrapf(err, "check table %s", table)
	}
	return n > 0, nil
}
