package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const defaultDocumentName = "leaderboard"

// SQLiteStore keeps the document as a single row of a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// OpenSQLite opens (or creates) the database at path and prepares its schema.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps :memory: databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an existing handle and runs the schema migration.
func NewSQLiteStore(ctx context.Context, db *sql.DB, opts ...SQLiteOption) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, name: defaultDocumentName}
	for _, opt := range opts {
		opt(s)
	}
	if err := migrate(ctx, db); err != nil {
		return nil, err
	}
	return s, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

// Load implements Store.Load.
func (s *SQLiteStore) Load(ctx context.Context) (data []byte, err error) {
	defer func(start time.Time) { observe(BackendSQLite, "load", start, err) }(time.Now())

	var body string
	err = s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, s.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load %s: %w", s.name, err)
	}
	return []byte(body), nil
}

// Save implements Store.Save.
func (s *SQLiteStore) Save(ctx context.Context, data []byte) (err error) {
	defer func(start time.Time) { observe(BackendSQLite, "save", start, err) }(time.Now())

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		s.name, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("sqlite save %s: %w", s.name, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
