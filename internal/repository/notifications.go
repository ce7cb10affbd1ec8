package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mr1hm/go-safety-alerts/internal/models"
)

const defaultListLimit = 100

func (s *SQLiteDB) AddNotification(ctx context.Context, n models.EmergencyNotification) error {
	pattern, err := json.Marshal(n.VibrationPattern)
	if err != nil {
		return fmt.Errorf("error encoding vibration pattern: %w", err)
	}

	var (
		alertID sql.NullString
		data    []byte
	)
	if n.Data != nil {
		alertID = sql.NullString{String: n.Data.ID, Valid: true}
		if data, err = json.Marshal(n.Data); err != nil {
			return fmt.Errorf("error encoding alert: %w", err)
		}
	}

	query := `
		INSERT OR IGNORE INTO notifications (id, type, title, body, alert_id, data, vibration_pattern, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		n.ID, string(n.Type), n.Title, n.Body, alertID, data, string(pattern), n.IsActive, n.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error adding notification %s: %w", n.ID, err)
	}
	return nil
}

// ListNotifications returns the newest notifications first.
func (s *SQLiteDB) ListNotifications(ctx context.Context, opts Filter) ([]models.EmergencyNotification, error) {
	var (
		conditions []string
		args       []any
	)
	if opts.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*opts.Type))
	}
	if opts.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, opts.Since.UnixMilli())
	}

	query := `SELECT id, type, title, body, data, vibration_pattern, is_active, created_at FROM notifications`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	var out []models.EmergencyNotification
	for rows.Next() {
		var (
			n         models.EmergencyNotification
			typ       string
			body      sql.NullString
			data      []byte
			pattern   string
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &typ, &n.Title, &body, &data, &pattern, &n.IsActive, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		n.Body = body.String
		n.Timestamp = time.UnixMilli(createdAt)
		if err := json.Unmarshal([]byte(pattern), &n.VibrationPattern); err != nil {
			return nil, fmt.Errorf("error decoding vibration pattern for %s: %w", n.ID, err)
		}
		if len(data) > 0 {
			var alert models.DisasterAlert
			if err := json.Unmarshal(data, &alert); err != nil {
				return nil, fmt.Errorf("error decoding alert for %s: %w", n.ID, err)
			}
			n.Data = &alert
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
