package model

import "time"

// Claim represents a user's assertion of ownership against a found-type
// report. Claims can only be created against found reports; the report
// owner picks a claimant when resolving.
type Claim struct {
	ID           int64      `json:"id"`
	ReportID     int64      `json:"report_id"`
	ClaimedBy    int64      `json:"claimed_by"`
	ReceivedFrom *int64     `json:"received_from,omitempty"`
	SupervisedBy *int64     `json:"supervised_by,omitempty"`
	VerifiedBy   *int64     `json:"verified_by,omitempty"`
	Message      string     `json:"message,omitempty"`
	Received     bool       `json:"received"`
	DateClaimed  time.Time  `json:"date_claimed"`
	DateReceived *time.Time `json:"date_received,omitempty"`

	// Joined fields (not always populated).
	ClaimantName string `json:"claimant_name,omitempty"`
	ItemName     string `json:"item_name,omitempty"`
}
