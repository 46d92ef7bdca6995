package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateNotification persists an unread notification for a user.
// Duplicates for repeated client actions are acceptable.
func CreateNotification(ctx context.Context, db *sql.DB, userID int64, message, detailedMessage string, relatedReportID *int64) (*model.Notification, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, message, detailed_message, related_report_id)
		 VALUES (?, ?, ?, ?)`,
		userID, message, detailedMessage, relatedReportID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting notification id: %w", err)
	}

	return GetNotification(ctx, db, id)
}

// GetNotification returns a notification by ID.
func GetNotification(ctx context.Context, db *sql.DB, id int64) (*model.Notification, error) {
	n := &model.Notification{}
	var detailed sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, message, detailed_message, related_report_id, is_read, created_at
		 FROM notifications WHERE id = ?`, id,
	).Scan(&n.ID, &n.UserID, &n.Message, &detailed, &n.RelatedReportID, &n.IsRead, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	n.DetailedMessage = detailed.String
	return n, nil
}

// ListNotifications returns a user's notifications, newest first.
func ListNotifications(ctx context.Context, db *sql.DB, userID int64) ([]model.Notification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, message, detailed_message, related_report_id, is_read, created_at
		 FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		var detailed sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &detailed, &n.RelatedReportID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.DetailedMessage = detailed.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// SetNotificationRead updates a notification's read flag.
func SetNotificationRead(ctx context.Context, db *sql.DB, id int64, isRead bool) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = ? WHERE id = ?`,
		isRead, id,
	)
	if err != nil {
		return fmt.Errorf("updating notification: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

// UnreadCount returns the number of a user's unread notifications.
func UnreadCount(ctx context.Context, db *sql.DB, userID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}
