package model

import "time"

// ResolutionLog is the immutable record written when a report is resolved.
// Receiver/giver names and the report title are snapshotted so the record
// survives later user deletion or renaming. At most one exists per report.
type ResolutionLog struct {
	ID           int64     `json:"id"`
	ReportID     int64     `json:"report_id"`
	ResolvedBy   int64     `json:"resolved_by"`
	ClaimedBy    *int64    `json:"claimed_by,omitempty"`
	ReceiverName string    `json:"receiver_name"`
	GiverName    string    `json:"giver_name"`
	ReportTitle  string    `json:"report_title"`
	DateResolved time.Time `json:"date_resolved"`
}

// ActivityLog is an append-only audit entry for privileged actions
// (role changes, resolutions).
type ActivityLog struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	ReportID       *int64    `json:"report_id,omitempty"`
	NotificationID *int64    `json:"notification_id,omitempty"`
	Action         string    `json:"action"`
	CreatedAt      time.Time `json:"created_at"`

	// Joined field (not always populated).
	Username string `json:"username,omitempty"`
}
