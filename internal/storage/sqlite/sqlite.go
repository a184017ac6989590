// Package sqlite stores snapshots in a single-table SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"smartkanban/internal/storage"
)

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at dbPath and runs the migration.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
            name TEXT PRIMARY KEY,
            body TEXT NOT NULL,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return &Store{db: conn}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Document(name string) storage.Document {
	return &document{db: s.db, name: name}
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

type document struct {
	db   *sql.DB
	name string
}

func (d *document) Load(ctx context.Context) ([]byte, error) {
	var body string
	err := d.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE name = ?`, d.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", d.name, err)
	}
	return []byte(body), nil
}

func (d *document) Save(ctx context.Context, body []byte) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO snapshots(name, body) VALUES(?, ?)
        ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`, d.name, string(body))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", d.name, err)
	}
	return nil
}
