package model

import "time"

// Comment is a discussion entry on a report.
type Comment struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Joined field (not always populated).
	AuthorName string `json:"author_name,omitempty"`
}
