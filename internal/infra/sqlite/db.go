// Package sqlite is the durable domain.Store, built on the pure-Go
// modernc.org/sqlite driver. Each Update runs in a single SQL transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/showup-club/showup/internal/domain"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "showup.db"

// DB wraps the SQLite connection.
type DB struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// Open opens (or creates) the database in dir and applies the schema.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer: every Update is serialized by the connection itself.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	db := &DB{db: conn, path: path, log: slog.Default().With("component", "sqlite")}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	db.log.Debug("database opened", "path", path)
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close closes the underlying connection.
func (db *DB) Close() error { return db.db.Close() }

func (db *DB) migrate() error {
	for i, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Update runs fn in a read-write transaction, committing only on success.
func (db *DB) Update(ctx context.Context, fn func(tx domain.Tx) error) error {
	sqlTx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// View runs fn in a transaction that is always rolled back.
func (db *DB) View(ctx context.Context, fn func(tx domain.Tx) error) error {
	sqlTx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()
	return fn(&tx{tx: sqlTx, readOnly: true})
}

// tx adapts *sql.Tx to domain.Tx.
type tx struct {
	tx       *sql.Tx
	readOnly bool
}

func (t *tx) Journeys() domain.JourneyStore { return journeyStore{t} }
func (t *tx) Ledger() domain.LedgerStore    { return ledgerStore{t} }
func (t *tx) Access() domain.AccessStore    { return accessStore{t} }
func (t *tx) Events() domain.EventLog       { return eventLog{t} }

func (t *tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if t.readOnly {
		return nil, errReadOnly
	}
	return t.tx.ExecContext(ctx, query, args...)
}
