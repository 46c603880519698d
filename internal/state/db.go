package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the store inside the process. Nothing reaches disk.
const MemoryDSN = ":memory:"

// DB holds per-process recall data such as submitted input lines.
type DB struct {
	conn *sql.DB
}

func Connect(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open input store: %w", err)
	}
	// Every pooled connection to :memory: opens its own database.
	conn.SetMaxOpenConns(1)

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate input store: %w", err)
	}

	return &DB{conn: conn}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS input_recall (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		line TEXT NOT NULL,
		recorded_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_input_recall_session
		ON input_recall (session_id, id);`
	_, err := db.Exec(schema)
	return err
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// RegisterSession records the session row recall lines hang off.
func (db *DB) RegisterSession(ctx context.Context, id string, createdAt time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO sessions (id, created_at) VALUES (?, ?)
	`, id, createdAt.UTC())
	return err
}

// ForgetSession drops a session and everything recorded under it.
func (db *DB) ForgetSession(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM input_recall WHERE session_id = ?`, id); err != nil {
		return err
	}
	_, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}
