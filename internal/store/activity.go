package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// RecordActivity appends an audit entry for a privileged action. Entries
// are never updated or deleted through normal operation.
func RecordActivity(ctx context.Context, db *sql.DB, userID int64, reportID, notificationID *int64, action string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO activity_logs (user_id, report_id, notification_id, action)
		 VALUES (?, ?, ?, ?)`,
		userID, reportID, notificationID, action,
	)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	return nil
}

// ListActivity returns activity log entries newest first. Admins see all
// entries; other users only see their own.
func ListActivity(ctx context.Context, db *sql.DB, userID int64, admin bool) ([]model.ActivityLog, error) {
	query := `SELECT a.id, a.user_id, a.report_id, a.notification_id, a.action, a.created_at, u.username
	          FROM activity_logs a
	          JOIN users u ON u.id = a.user_id`
	var args []any

	if !admin {
		query += ` WHERE a.user_id = ?`
		args = append(args, userID)
	}

	query += ` ORDER BY a.created_at DESC, a.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	var logs []model.ActivityLog
	for rows.Next() {
		var l model.ActivityLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.ReportID, &l.NotificationID, &l.Action, &l.CreatedAt, &l.Username); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
