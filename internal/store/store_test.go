package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/najdeno/internal/model"
)

// testUser creates a user for tests.
func testUser(t *testing.T, db *sql.DB, username, role string) *model.User {
	t.Helper()
	user, err := CreateUser(context.Background(), db, username, "", "hash", role)
	if err != nil {
		t.Fatalf("creating test user %q: %v", username, err)
	}
	return user
}

// testReport creates a pending report for tests.
func testReport(t *testing.T, db *sql.DB, reportedBy int64, typ, itemName string) *model.Report {
	t.Helper()
	report, err := CreateReport(context.Background(), db, reportedBy, typ, model.ItemDetail{ItemName: itemName})
	if err != nil {
		t.Fatalf("creating test report %q: %v", itemName, err)
	}
	return report
}
