package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/devsecops-monitor/monitor/internal/session"
)

func (d *DB) PutSession(ctx context.Context, s *session.Session) error {
	_, err := d.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (token, username, created_at)
		VALUES (?, ?, ?)`,
		s.Token, s.Username, s.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (d *DB) GetSession(ctx context.Context, token string) (*session.Session, error) {
	var s session.Session
	var createdAt string
	err := d.QueryRowContext(ctx, `
		SELECT token, username, created_at FROM sessions WHERE token = ?`, token).
		Scan(&s.Token, &s.Username, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

func (d *DB) DeleteSession(ctx context.Context, token string) error {
	_, err := d.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// PurgeSessions removes sessions created before the cutoff.
func (d *DB) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
