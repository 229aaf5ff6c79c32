package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores the record as one row of a local SQLite database,
// keyed by the save key. Several keys can share a database file.
type SQLiteBackend struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens (and creates if missing) the database at path and
// migrates the saves table.
func OpenSQLite(ctx context.Context, path, key string) (*SQLiteBackend, error) {
	if key == "" {
		return nil, fmt.Errorf("save key cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db, key: key}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS saves (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Read() ([]byte, error) {
	row := b.db.QueryRow(`SELECT data FROM saves WHERE key = ?`, b.key)
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("save get: %w", err)
	}
	return []byte(data), nil
}

func (b *SQLiteBackend) Write(data []byte) error {
	_, err := b.db.Exec(`
		INSERT INTO saves (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, b.key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save upsert: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Remove() error {
	if _, err := b.db.Exec(`DELETE FROM saves WHERE key = ?`, b.key); err != nil {
		return fmt.Errorf("save delete: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

var _ Backend = (*SQLiteBackend)(nil)
