package model

import "time"

// Report represents a lost- or found-item submission with a lifecycle status.
// Exactly one of Lost or Found is set, matching Type.
type Report struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	ReportedBy int64     `json:"reported_by"`
	CreatedAt  time.Time `json:"created_at"`

	Lost  *LostItem  `json:"lost_item,omitempty"`
	Found *FoundItem `json:"found_item,omitempty"`

	// Joined field (not always populated).
	ReporterName string `json:"reporter_name,omitempty"`
}

// Report types.
const (
	ReportTypeLost  = "lost"
	ReportTypeFound = "found"
)

// Report statuses. A report starts pending; pending can become approved or
// rejected, approved can become resolved. Rejected and resolved are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusResolved = "resolved"
)

// ItemDetail holds the item metadata shared by lost and found reports.
// It is the input for creating a report; the store writes it to the
// table matching the report type.
type ItemDetail struct {
	ItemName    string     `json:"item_name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    string     `json:"location"`
	Date        *time.Time `json:"date,omitempty"`
}

// LostItem is the detail record for a lost-type report.
type LostItem struct {
	ItemName         string     `json:"item_name"`
	Description      string     `json:"description,omitempty"`
	Category         string     `json:"category,omitempty"`
	LocationLastSeen string     `json:"location_last_seen,omitempty"`
	PhotoMime        string     `json:"photo_mime,omitempty"`
	DateLost         *time.Time `json:"date_lost,omitempty"`
}

// FoundItem is the detail record for a found-type report.
type FoundItem struct {
	ItemName      string     `json:"item_name"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category,omitempty"`
	LocationFound string     `json:"location_found,omitempty"`
	PhotoMime     string     `json:"photo_mime,omitempty"`
	DateFound     *time.Time `json:"date_found,omitempty"`
}

// Title returns the report's item name, taken from whichever detail is set.
func (r *Report) Title() string {
	switch {
	case r.Lost != nil:
		return r.Lost.ItemName
	case r.Found != nil:
		return r.Found.ItemName
	}
	return ""
}
