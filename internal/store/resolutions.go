package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// ResolveReport closes a report: it transitions the status to resolved and
// writes the resolution log in one transaction, so no other operation can
// observe one without the other.
//
// The first statement is the guarded status update, which takes the write
// lock and re-checks the status inside the transaction. When two resolve
// calls race on the same report, exactly one guard matches; the loser is
// classified by re-reading the committed status and fails with
// ErrAlreadyResolved. The resolving and claiming users' display names and
// the report title are snapshotted into the log so the record survives
// later user deletion or renaming.
func ResolveReport(ctx context.Context, db *sql.DB, reportID, resolvedBy, claimedBy int64) (*model.ResolutionLog, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE reports SET status = ? WHERE id = ? AND status = ?`,
		model.StatusResolved, reportID, model.StatusApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("resolving report: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking resolve update: %w", err)
	}
	if n == 0 {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM reports WHERE id = ?`, reportID).Scan(&current)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report %d: %w", reportID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("checking report status: %w", err)
		}
		if current == model.StatusResolved {
			return nil, fmt.Errorf("report %d: %w", reportID, ErrAlreadyResolved)
		}
		return nil, fmt.Errorf("report is %s, cannot set %s: %w", current, model.StatusResolved, ErrInvalidTransition)
	}

	giverName, err := displayName(ctx, tx, resolvedBy)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	receiverName, err := displayName(ctx, tx, claimedBy)
	if err != nil {
		return nil, fmt.Errorf("claimant: %w", err)
	}

	var title string
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(
		    (SELECT item_name FROM lost_items WHERE report_id = ?),
		    (SELECT item_name FROM found_items WHERE report_id = ?),
		    '')`,
		reportID, reportID,
	).Scan(&title)
	if err != nil {
		return nil, fmt.Errorf("snapshotting report title: %w", err)
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO resolution_logs (report_id, resolved_by, claimed_by, receiver_name, giver_name, report_title)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reportID, resolvedBy, claimedBy, receiverName, giverName, title,
	)
	if err != nil {
		return nil, fmt.Errorf("writing resolution log: %w", err)
	}

	logID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting resolution log id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing resolution: %w", err)
	}

	return GetResolutionLog(ctx, db, logID)
}

// displayName returns a user's display name within the transaction, or
// ErrNotFound if the user does not exist.
func displayName(ctx context.Context, tx *sql.Tx, userID int64) (string, error) {
	var name string
	err := tx.QueryRowContext(ctx, `SELECT display_name FROM users WHERE id = ?`, userID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting display name: %w", err)
	}
	return name, nil
}

// GetResolutionLog returns a resolution log by ID.
func GetResolutionLog(ctx context.Context, db *sql.DB, id int64) (*model.ResolutionLog, error) {
	l := &model.ResolutionLog{}
	err := db.QueryRowContext(ctx,
		`SELECT id, report_id, resolved_by, claimed_by, receiver_name, giver_name, report_title, date_resolved
		 FROM resolution_logs WHERE id = ?`, id,
	).Scan(&l.ID, &l.ReportID, &l.ResolvedBy, &l.ClaimedBy, &l.ReceiverName, &l.GiverName, &l.ReportTitle, &l.DateResolved)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting resolution log: %w", err)
	}
	return l, nil
}

// ListResolutionLogs returns resolution logs newest first. Admins see all
// logs; other users only see logs for reports they filed.
func ListResolutionLogs(ctx context.Context, db *sql.DB, userID int64, admin bool) ([]model.ResolutionLog, error) {
	query := `SELECT l.id, l.report_id, l.resolved_by, l.claimed_by,
	                 l.receiver_name, l.giver_name, l.report_title, l.date_resolved
	          FROM resolution_logs l`
	var args []any

	if !admin {
		query += ` JOIN reports r ON r.id = l.report_id WHERE r.reported_by = ?`
		args = append(args, userID)
	}

	query += ` ORDER BY l.date_resolved DESC, l.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing resolution logs: %w", err)
	}
	defer rows.Close()

	var logs []model.ResolutionLog
	for rows.Next() {
		var l model.ResolutionLog
		if err := rows.Scan(&l.ID, &l.ReportID, &l.ResolvedBy, &l.ClaimedBy,
			&l.ReceiverName, &l.GiverName, &l.ReportTitle, &l.DateResolved); err != nil {
			return nil, fmt.Errorf("scanning resolution log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// CountResolutionLogs returns the number of resolution logs for a report.
func CountResolutionLogs(ctx context.Context, db *sql.DB, reportID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resolution_logs WHERE report_id = ?`, reportID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting resolution logs: %w", err)
	}
	return count, nil
}
