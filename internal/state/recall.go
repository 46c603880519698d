package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RecallLimit caps how many submitted lines a session can page back through.
const RecallLimit = 100

// RememberInput stores a submitted line for up/down recall. Blank lines and a
// repeat of the newest line are dropped.
func (db *DB) RememberInput(ctx context.Context, sessionID, line string) error {
	sessionID = strings.TrimSpace(sessionID)
	line = strings.TrimSpace(line)
	if sessionID == "" || line == "" {
		return nil
	}

	var newest string
	err := db.conn.QueryRowContext(ctx,
		`SELECT line FROM input_recall WHERE session_id = ? ORDER BY id DESC LIMIT 1`,
		sessionID).Scan(&newest)
	switch {
	case err == nil && newest == line:
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read newest recall line: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO input_recall (session_id, line, recorded_at) VALUES (?, ?, ?)`,
		sessionID, line, time.Now().UTC()); err != nil {
		return fmt.Errorf("remember input: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		DELETE FROM input_recall
		WHERE session_id = ?
		  AND id NOT IN (
			SELECT id FROM input_recall
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		  )`, sessionID, sessionID, RecallLimit)
	return err
}

// RecallInput returns the line back steps behind the newest one, where 1 is
// the newest. back is clamped to the lines held; the returned depth is the
// step actually read, 0 when the session has nothing to recall.
func (db *DB) RecallInput(ctx context.Context, sessionID string, back int) (string, int, error) {
	sessionID = strings.TrimSpace(sessionID)
	var held int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM input_recall WHERE session_id = ?`, sessionID).Scan(&held); err != nil {
		return "", 0, fmt.Errorf("count recall lines: %w", err)
	}
	if held == 0 {
		return "", 0, nil
	}
	back = min(max(back, 1), held)

	var line string
	if err := db.conn.QueryRowContext(ctx,
		`SELECT line FROM input_recall WHERE session_id = ? ORDER BY id DESC LIMIT 1 OFFSET ?`,
		sessionID, back-1).Scan(&line); err != nil {
		return "", 0, fmt.Errorf("recall input: %w", err)
	}
	return line, back, nil
}

// RecalledInputs lists a session's recall lines oldest first.
func (db *DB) RecalledInputs(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT line FROM input_recall WHERE session_id = ? ORDER BY id ASC`,
		strings.TrimSpace(sessionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
