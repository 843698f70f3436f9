package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// slotName is the single named slot the session record lives under.
const slotName = "userSession"

const schema = `
CREATE TABLE IF NOT EXISTS session (
  slot TEXT PRIMARY KEY,
  data BLOB NOT NULL
);`

// SQLiteBackend keeps the session record in a one-row key/value table,
// for installs that already carry a local SQLite database.
type SQLiteBackend struct {
	db *sqlx.DB
}

// NewSQLiteBackend returns a SQLiteBackend over an open database.
func NewSQLiteBackend(db *sqlx.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// OpenSQLiteBackend opens (creating if necessary) the SQLite database at
// path and ensures the session table exists.
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.GetContext(ctx, &data, `SELECT data FROM session WHERE slot = ?`, slotName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, err
	}
	return data, nil
}

func (b *SQLiteBackend) Write(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO session (slot, data) VALUES (?, ?)
		 ON CONFLICT(slot) DO UPDATE SET data = excluded.data`,
		slotName, data)
	return err
}

func (b *SQLiteBackend) Delete(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM session WHERE slot = ?`, slotName)
	return err
}

// Close closes the underlying database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
