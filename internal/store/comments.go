package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateComment adds a comment to a report.
func CreateComment(ctx context.Context, db *sql.DB, reportID, userID int64, content string) (*model.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO comments (report_id, user_id, content) VALUES (?, ?, ?)`,
		reportID, userID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting comment id: %w", err)
	}

	return GetComment(ctx, db, id)
}

// GetComment returns a comment by ID.
func GetComment(ctx context.Context, db *sql.DB, id int64) (*model.Comment, error) {
	c := &model.Comment{}
	err := db.QueryRowContext(ctx,
		`SELECT c.id, c.report_id, c.user_id, c.content, c.created_at, u.display_name
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.id = ?`, id,
	).Scan(&c.ID, &c.ReportID, &c.UserID, &c.Content, &c.CreatedAt, &c.AuthorName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment: %w", err)
	}
	return c, nil
}

// ListComments returns a report's comments, newest first.
func ListComments(ctx context.Context, db *sql.DB, reportID int64) ([]model.Comment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.report_id, c.user_id, c.content, c.created_at, u.display_name
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.report_id = ?
		 ORDER BY c.created_at DESC, c.id DESC`, reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ReportID, &c.UserID, &c.Content, &c.CreatedAt, &c.AuthorName); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment.
func DeleteComment(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return nil
}
