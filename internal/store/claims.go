package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateClaim creates a claim against a found-type report. Claims against
// lost reports fail with ErrWrongReportType. Multiple claims per report are
// allowed; the report owner picks a claimant at resolve time.
func CreateClaim(ctx context.Context, db *sql.DB, reportID, claimedBy int64, message string) (*model.Claim, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var typ string
	err = tx.QueryRowContext(ctx, `SELECT type FROM reports WHERE id = ?`, reportID).Scan(&typ)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %d: %w", reportID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("checking report type: %w", err)
	}
	if typ != model.ReportTypeFound {
		return nil, fmt.Errorf("only found reports can be claimed: %w", ErrWrongReportType)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO claims (report_id, claimed_by, message) VALUES (?, ?, ?)`,
		reportID, claimedBy, message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	c := &model.Claim{}
	var message sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT c.id, c.report_id, c.claimed_by, c.received_from, c.supervised_by, c.verified_by,
		        c.message, c.received, c.date_claimed, c.date_received,
		        u.display_name, COALESCE(li.item_name, fi.item_name, '') AS item_name
		 FROM claims c
		 JOIN users u ON u.id = c.claimed_by
		 LEFT JOIN lost_items li ON li.report_id = c.report_id
		 LEFT JOIN found_items fi ON fi.report_id = c.report_id
		 WHERE c.id = ?`, id,
	).Scan(&c.ID, &c.ReportID, &c.ClaimedBy, &c.ReceivedFrom, &c.SupervisedBy, &c.VerifiedBy,
		&message, &c.Received, &c.DateClaimed, &c.DateReceived,
		&c.ClaimantName, &c.ItemName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	c.Message = message.String
	return c, nil
}

// ListClaims returns claims newest first. Admins see all claims; other
// users only see claims they filed.
func ListClaims(ctx context.Context, db *sql.DB, userID int64, admin bool) ([]model.Claim, error) {
	query := `SELECT c.id, c.report_id, c.claimed_by, c.received_from, c.supervised_by, c.verified_by,
	                 c.message, c.received, c.date_claimed, c.date_received,
	                 u.display_name, COALESCE(li.item_name, fi.item_name, '') AS item_name
	          FROM claims c
	          JOIN users u ON u.id = c.claimed_by
	          LEFT JOIN lost_items li ON li.report_id = c.report_id
	          LEFT JOIN found_items fi ON fi.report_id = c.report_id`
	var args []any

	if !admin {
		query += ` WHERE c.claimed_by = ?`
		args = append(args, userID)
	}

	query += ` ORDER BY c.date_claimed DESC, c.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var message sql.NullString
		if err := rows.Scan(&c.ID, &c.ReportID, &c.ClaimedBy, &c.ReceivedFrom, &c.SupervisedBy, &c.VerifiedBy,
			&message, &c.Received, &c.DateClaimed, &c.DateReceived,
			&c.ClaimantName, &c.ItemName); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		c.Message = message.String
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// MarkClaimReceived records the physical hand-off for a claim: who gave the
// item, who supervised the exchange, and which staff user verified it.
// Fails if the claim is already marked received.
func MarkClaimReceived(ctx context.Context, db *sql.DB, id int64, receivedFrom, supervisedBy, verifiedBy *int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE claims SET received = 1, date_received = CURRENT_TIMESTAMP,
		        received_from = ?, supervised_by = ?, verified_by = ?
		 WHERE id = ? AND received = 0`,
		receivedFrom, supervisedBy, verifiedBy, id,
	)
	if err != nil {
		return fmt.Errorf("marking claim received: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking claim update: %w", err)
	}
	if n == 0 {
		var received bool
		err := db.QueryRowContext(ctx, `SELECT received FROM claims WHERE id = ?`, id).Scan(&received)
		if err == sql.ErrNoRows {
			return fmt.Errorf("claim %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("checking claim: %w", err)
		}
		return fmt.Errorf("claim %d: %w", id, ErrAlreadyReceived)
	}
	return nil
}
