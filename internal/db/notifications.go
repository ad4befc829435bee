package db

import (
	"context"
	"time"
)

// Notification is a stored report lifecycle event shown in the dashboard.
type Notification struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}

func (d *DB) CreateNotification(ctx context.Context, level, title, message string) (*Notification, error) {
	now := time.Now().UTC()
	res, err := d.ExecContext(ctx, `
		INSERT INTO notifications (level, title, message, created_at)
		VALUES (?, ?, ?, ?)`,
		level, title, message, now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return &Notification{
		ID:        id,
		Level:     level,
		Title:     title,
		Message:   message,
		CreatedAt: now,
	}, nil
}

func (d *DB) ListNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.QueryContext(ctx, `
		SELECT id, level, title, message, seen, created_at
		FROM notifications
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var seen int64
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Level, &n.Title, &n.Message, &seen, &createdAt); err != nil {
			return nil, err
		}
		n.Seen = seen != 0
		n.CreatedAt = parseTime(createdAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (d *DB) MarkNotificationSeen(ctx context.Context, id int64) error {
	_, err := d.ExecContext(ctx, `UPDATE notifications SET seen = 1 WHERE id = ?`, id)
	return err
}
