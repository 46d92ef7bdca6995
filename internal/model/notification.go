package model

import "time"

// Notification is a pull-read message created as a side effect of domain
// events (claim filed, item reportedly found, report resolved). Clients
// never create notifications directly.
type Notification struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Message         string    `json:"message"`
	DetailedMessage string    `json:"detailed_message,omitempty"`
	RelatedReportID *int64    `json:"related_report_id,omitempty"`
	IsRead          bool      `json:"is_read"`
	CreatedAt       time.Time `json:"created_at"`
}
