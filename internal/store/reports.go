package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// CreateReport creates a pending report and its detail row in a single
// transaction. The detail is written to the table matching typ, so the
// report type and its detail record cannot disagree.
func CreateReport(ctx context.Context, db *sql.DB, reportedBy int64, typ string, detail model.ItemDetail) (*model.Report, error) {
	if typ != model.ReportTypeLost && typ != model.ReportTypeFound {
		return nil, fmt.Errorf("invalid report type %q", typ)
	}
	if detail.ItemName == "" {
		return nil, fmt.Errorf("item name is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO reports (type, reported_by) VALUES (?, ?)`,
		typ, reportedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting report id: %w", err)
	}

	if typ == model.ReportTypeLost {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO lost_items (report_id, item_name, description, category, location_last_seen, date_lost)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, detail.ItemName, detail.Description, detail.Category, detail.Location, detail.Date,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO found_items (report_id, item_name, description, category, location_found, date_found)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, detail.ItemName, detail.Description, detail.Category, detail.Location, detail.Date,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("creating report detail: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing report: %w", err)
	}

	return GetReport(ctx, db, id)
}

// GetReport returns a report with its detail record.
func GetReport(ctx context.Context, db *sql.DB, id int64) (*model.Report, error) {
	r := &model.Report{}
	err := db.QueryRowContext(ctx,
		`SELECT r.id, r.type, r.status, r.reported_by, r.created_at, u.display_name
		 FROM reports r
		 JOIN users u ON u.id = r.reported_by
		 WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.Type, &r.Status, &r.ReportedBy, &r.CreatedAt, &r.ReporterName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}

	if err := attachDetail(ctx, db, r); err != nil {
		return nil, err
	}
	return r, nil
}

// attachDetail loads the detail row matching the report's type.
func attachDetail(ctx context.Context, db *sql.DB, r *model.Report) error {
	var name string
	var description, category, location, photoMime sql.NullString
	var date sql.NullTime

	if r.Type == model.ReportTypeLost {
		err := db.QueryRowContext(ctx,
			`SELECT item_name, description, category, location_last_seen, photo_mime, date_lost
			 FROM lost_items WHERE report_id = ?`, r.ID,
		).Scan(&name, &description, &category, &location, &photoMime, &date)
		if err != nil {
			return fmt.Errorf("getting lost item detail: %w", err)
		}
		r.Lost = &model.LostItem{
			ItemName:         name,
			Description:      description.String,
			Category:         category.String,
			LocationLastSeen: location.String,
			PhotoMime:        photoMime.String,
		}
		if date.Valid {
			r.Lost.DateLost = &date.Time
		}
		return nil
	}

	err := db.QueryRowContext(ctx,
		`SELECT item_name, description, category, location_found, photo_mime, date_found
		 FROM found_items WHERE report_id = ?`, r.ID,
	).Scan(&name, &description, &category, &location, &photoMime, &date)
	if err != nil {
		return fmt.Errorf("getting found item detail: %w", err)
	}
	r.Found = &model.FoundItem{
		ItemName:      name,
		Description:   description.String,
		Category:      category.String,
		LocationFound: location.String,
		PhotoMime:     photoMime.String,
	}
	if date.Valid {
		r.Found.DateFound = &date.Time
	}
	return nil
}

// ListReports returns reports newest first, optionally filtered by type,
// status, and an item-name/description search term.
func ListReports(ctx context.Context, db *sql.DB, typ, status, search string) ([]model.Report, error) {
	query := `SELECT r.id, r.type, r.status, r.reported_by, r.created_at, u.display_name,
	                 COALESCE(li.item_name, fi.item_name) AS item_name,
	                 COALESCE(li.description, fi.description, '') AS description,
	                 COALESCE(li.category, fi.category, '') AS category,
	                 COALESCE(li.location_last_seen, fi.location_found, '') AS location,
	                 COALESCE(li.photo_mime, fi.photo_mime, '') AS photo_mime
	          FROM reports r
	          JOIN users u ON u.id = r.reported_by
	          LEFT JOIN lost_items li ON li.report_id = r.id
	          LEFT JOIN found_items fi ON fi.report_id = r.id
	          WHERE 1=1`
	var args []any

	if typ != "" {
		query += ` AND r.type = ?`
		args = append(args, typ)
	}
	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, status)
	}
	if search != "" {
		query += ` AND (COALESCE(li.item_name, fi.item_name) LIKE ?
		               OR COALESCE(li.description, fi.description, '') LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	query += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		var r model.Report
		var name, description, category, location, photoMime string
		if err := rows.Scan(&r.ID, &r.Type, &r.Status, &r.ReportedBy, &r.CreatedAt, &r.ReporterName,
			&name, &description, &category, &location, &photoMime); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		if r.Type == model.ReportTypeLost {
			r.Lost = &model.LostItem{
				ItemName:         name,
				Description:      description,
				Category:         category,
				LocationLastSeen: location,
				PhotoMime:        photoMime,
			}
		} else {
			r.Found = &model.FoundItem{
				ItemName:      name,
				Description:   description,
				Category:      category,
				LocationFound: location,
				PhotoMime:     photoMime,
			}
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// ApproveReport transitions a pending report to approved.
func ApproveReport(ctx context.Context, db *sql.DB, id int64) error {
	return setReportStatus(ctx, db, id, model.StatusPending, model.StatusApproved)
}

// RejectReport transitions a pending report to rejected.
func RejectReport(ctx context.Context, db *sql.DB, id int64) error {
	return setReportStatus(ctx, db, id, model.StatusPending, model.StatusRejected)
}

// setReportStatus performs a guarded status update: the row is only
// changed if its current status matches from. A failed guard is
// classified by re-reading the row.
func setReportStatus(ctx context.Context, db *sql.DB, id int64, from, to string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE reports SET status = ? WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("updating report status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking status update: %w", err)
	}
	if n > 0 {
		return nil
	}

	var current string
	err = db.QueryRowContext(ctx, `SELECT status FROM reports WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking report status: %w", err)
	}
	return fmt.Errorf("report is %s, cannot set %s: %w", current, to, ErrInvalidTransition)
}

// SetReportPhoto stores processed photo data on the report's detail row.
func SetReportPhoto(ctx context.Context, db *sql.DB, id int64, photo []byte, mime string) error {
	r, err := GetReport(ctx, db, id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("report %d: %w", id, ErrNotFound)
	}

	table := "found_items"
	if r.Type == model.ReportTypeLost {
		table = "lost_items"
	}

	_, err = db.ExecContext(ctx,
		`UPDATE `+table+` SET photo = ?, photo_mime = ? WHERE report_id = ?`,
		photo, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting report photo: %w", err)
	}
	return nil
}

// GetReportPhoto returns the photo data and MIME type for a report.
func GetReportPhoto(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(li.photo, fi.photo), COALESCE(li.photo_mime, fi.photo_mime)
		 FROM reports r
		 LEFT JOIN lost_items li ON li.report_id = r.id
		 LEFT JOIN found_items fi ON fi.report_id = r.id
		 WHERE r.id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("report %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting report photo: %w", err)
	}
	return photo, mime.String, nil
}
