package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// SQLite is a PrefStore kept in a SQLite database, one row per key. Writes go into a transaction that's opened on the first
// write and committed by Flush().
type SQLite struct {
	db      *sql.DB
	tx      *sql.Tx
	stmtSet *sql.Stmt
	path    string
}

// OpenSQLite opens (or creates) the SQLite preferences database at path.
func OpenSQLite(path string) (*SQLite, error) {

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("prefs: creating %s: %w", filepath.Dir(path), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// A single connection, so an in-memory database is the same database on every query.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS prefs (
		key TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		value TEXT NOT NULL
	) WITHOUT ROWID;
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil

}

// Path returns the path of the database backing the store.
func (store *SQLite) Path() string {
	return store.path
}

func (store *SQLite) beginTx() error {

	if store.tx != nil {
		return nil
	}

	tx, err := store.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO prefs (key, kind, value) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, value = excluded.value`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare set: %w", err)
	}

	store.tx = tx
	store.stmtSet = stmt

	return nil

}

func (store *SQLite) set(key, kind, value string) error {

	if store.db == nil {
		return ErrClosed
	}

	if err := store.beginTx(); err != nil {
		return err
	}

	if _, err := store.stmtSet.Exec(key, kind, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return nil

}

// get returns the raw value of the key, reading through the open transaction if there is one.
func (store *SQLite) get(key string) (string, string, bool) {

	if store.db == nil {
		return "", "", false
	}

	var row *sql.Row
	query := `SELECT kind, value FROM prefs WHERE key = ?`
	if store.tx != nil {
		row = store.tx.QueryRow(query, key)
	} else {
		row = store.db.QueryRow(query, key)
	}

	var kind, value string
	if err := row.Scan(&kind, &value); err != nil {
		return "", "", false
	}

	return kind, value, true

}

func (store *SQLite) GetBool(key string, def bool) bool {
	if _, value, ok := store.get(key); ok {
		if b, ok := toBool(value); ok {
			return b
		}
	}
	return def
}

func (store *SQLite) SetBool(key string, value bool) error {
	return store.set(key, "bool", strconv.FormatBool(value))
}

func (store *SQLite) GetFloat(key string, def float64) float64 {
	if _, value, ok := store.get(key); ok {
		if f, ok := toFloat(value); ok {
			return f
		}
	}
	return def
}

func (store *SQLite) SetFloat(key string, value float64) error {
	return store.set(key, "float", strconv.FormatFloat(value, 'g', -1, 64))
}

func (store *SQLite) GetString(key string, def string) string {
	if _, value, ok := store.get(key); ok {
		return value
	}
	return def
}

func (store *SQLite) SetString(key string, value string) error {
	return store.set(key, "string", value)
}

// Keys returns every key in the store, sorted.
func (store *SQLite) Keys() ([]string, error) {

	if store.db == nil {
		return nil, ErrClosed
	}

	query := `SELECT key FROM prefs ORDER BY key`

	var rows *sql.Rows
	var err error
	if store.tx != nil {
		rows, err = store.tx.Query(query)
	} else {
		rows, err = store.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()

}

// Flush commits any pending writes.
func (store *SQLite) Flush() error {

	if store.db == nil {
		return ErrClosed
	}

	if store.tx == nil {
		return nil
	}

	_ = store.stmtSet.Close()
	err := store.tx.Commit()
	store.tx = nil
	store.stmtSet = nil

	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil

}

// Close commits any pending writes and closes the database.
func (store *SQLite) Close() error {

	if store.db == nil {
		return nil
	}

	flushErr := store.Flush()
	closeErr := store.db.Close()
	store.db = nil

	return errors.Join(flushErr, closeErr)

}
