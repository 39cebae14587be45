package sink

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/carlodf/roastetl/roast"
)

// sqliteDSNPragmas is applied by the driver to every new connection.
const sqliteDSNPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// SQLiteStore keeps every export run in a SQLite database: one exports
// row per run, one roasts row per document holding every column of the
// table, and the run's diagnostics.
type SQLiteStore struct {
	db    *sql.DB
	table *roast.Table
	now   func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path with WAL
// journaling and a 5 s busy timeout, and ensures the schema for table.
func OpenSQLite(ctx context.Context, path string, table *roast.Table) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if table == nil {
		return nil, fmt.Errorf("roast table is required")
	}
	path = filepath.Clean(path)
	db, err := sql.Open("sqlite", path+sqliteDSNPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	s := &SQLiteStore{db: db, table: table, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return s, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	cols := make([]string, 0, s.table.Len())
	for _, c := range s.table.Columns() {
		cols = append(cols, quoteIdent(c))
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			id         TEXT PRIMARY KEY,
			source     TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			documents  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS roasts (
			export_id TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
			document  TEXT NOT NULL,
			` + strings.Join(cols, ",\n\t\t\t") + `
		)`,
		`CREATE INDEX IF NOT EXISTS roasts_export_id ON roasts(export_id)`,
		`CREATE TABLE IF NOT EXISTS diagnostics (
			export_id   TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
			document    TEXT NOT NULL,
			column_name TEXT NOT NULL,
			message     TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save stores one export run and returns its id.
func (s *SQLiteStore) Save(ctx context.Context, source string, recs []roast.Record, diags []roast.Diagnostic) (string, error) {
	id := uuid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin export: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exports (id, source, created_at, documents) VALUES (?, ?, ?, ?)`,
		id, source, s.now().UTC().UnixMilli(), len(recs),
	); err != nil {
		return "", fmt.Errorf("insert export: %w", err)
	}

	columns := s.table.Columns()
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	insertRoast, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO roasts (export_id, document, %s) VALUES (?, ?%s)`,
		strings.Join(quoted, ", "), strings.Repeat(", ?", len(columns)),
	))
	if err != nil {
		return "", fmt.Errorf("prepare roast insert: %w", err)
	}
	defer insertRoast.Close()

	args := make([]any, 2+len(columns))
	for _, rec := range recs {
		vals, err := rec.Select(columns)
		if err != nil {
			return "", fmt.Errorf("roast row for %s: %w", rec.Source(), err)
		}
		args[0], args[1] = id, rec.Source()
		for i, v := range vals {
			args[2+i] = v.Interface()
		}
		if _, err := insertRoast.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("insert roast %s: %w", rec.Source(), err)
		}
	}

	for _, d := range diags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO diagnostics (export_id, document, column_name, message) VALUES (?, ?, ?, ?)`,
			id, d.Document, d.Column, d.Message,
		); err != nil {
			return "", fmt.Errorf("insert diagnostic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}
	return id, nil
}

// Documents returns the number of roast rows stored for an export.
func (s *SQLiteStore) Documents(ctx context.Context, exportID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roasts WHERE export_id = ?`, exportID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count roasts: %w", err)
	}
	return n, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
