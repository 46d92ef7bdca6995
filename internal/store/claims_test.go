package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateClaim(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	finder := testUser(t, database, "finder", model.RoleUser)
	claimant := testUser(t, database, "claimant", model.RoleUser)
	report := testReport(t, database, finder.ID, model.ReportTypeFound, "Wallet")

	claim, err := CreateClaim(ctx, database, report.ID, claimant.ID, "That's my wallet, it has my ID inside")
	if err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if claim.ReportID != report.ID {
		t.Errorf("expected report %d, got %d", report.ID, claim.ReportID)
	}
	if claim.Received {
		t.Error("expected new claim to not be received")
	}
	if claim.ClaimantName != "claimant" {
		t.Errorf("expected claimant name 'claimant', got %q", claim.ClaimantName)
	}
	if claim.ItemName != "Wallet" {
		t.Errorf("expected item name 'Wallet', got %q", claim.ItemName)
	}
}

func TestCreateClaimWrongType(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := testUser(t, database, "owner", model.RoleUser)
	claimant := testUser(t, database, "claimant", model.RoleUser)
	report := testReport(t, database, owner.ID, model.ReportTypeLost, "Umbrella")

	_, err := CreateClaim(ctx, database, report.ID, claimant.ID, "mine")
	if !errors.Is(err, ErrWrongReportType) {
		t.Errorf("expected ErrWrongReportType, got %v", err)
	}

	_, err = CreateClaim(ctx, database, 42, claimant.ID, "mine")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMultipleClaimsAllowed(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	finder := testUser(t, database, "finder", model.RoleUser)
	a := testUser(t, database, "a", model.RoleUser)
	b := testUser(t, database, "b", model.RoleUser)
	report := testReport(t, database, finder.ID, model.ReportTypeFound, "Wallet")

	if _, err := CreateClaim(ctx, database, report.ID, a.ID, "mine"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := CreateClaim(ctx, database, report.ID, b.ID, "no, mine"); err != nil {
		t.Fatalf("second claim: %v", err)
	}
}

func TestListClaimsVisibility(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	finder := testUser(t, database, "finder", model.RoleUser)
	a := testUser(t, database, "a", model.RoleUser)
	b := testUser(t, database, "b", model.RoleUser)
	admin := testUser(t, database, "admin", model.RoleAdmin)
	report := testReport(t, database, finder.ID, model.ReportTypeFound, "Wallet")

	CreateClaim(ctx, database, report.ID, a.ID, "")
	CreateClaim(ctx, database, report.ID, b.ID, "")

	own, err := ListClaims(ctx, database, a.ID, false)
	if err != nil {
		t.Fatalf("ListClaims: %v", err)
	}
	if len(own) != 1 || own[0].ClaimedBy != a.ID {
		t.Errorf("expected only a's claim, got %d claims", len(own))
	}

	all, err := ListClaims(ctx, database, admin.ID, true)
	if err != nil {
		t.Fatalf("ListClaims admin: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 claims for admin, got %d", len(all))
	}
}

func TestMarkClaimReceived(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	finder := testUser(t, database, "finder", model.RoleUser)
	claimant := testUser(t, database, "claimant", model.RoleUser)
	admin := testUser(t, database, "admin", model.RoleAdmin)
	report := testReport(t, database, finder.ID, model.ReportTypeFound, "Wallet")

	claim, _ := CreateClaim(ctx, database, report.ID, claimant.ID, "")

	if err := MarkClaimReceived(ctx, database, claim.ID, &finder.ID, &admin.ID, &admin.ID); err != nil {
		t.Fatalf("MarkClaimReceived: %v", err)
	}

	got, _ := GetClaim(ctx, database, claim.ID)
	if !got.Received {
		t.Error("expected claim to be received")
	}
	if got.DateReceived == nil {
		t.Error("expected date_received to be set")
	}
	if got.ReceivedFrom == nil || *got.ReceivedFrom != finder.ID {
		t.Error("expected received_from to record the giver")
	}
	if got.VerifiedBy == nil || *got.VerifiedBy != admin.ID {
		t.Error("expected verified_by to record the admin")
	}

	// A second hand-off is rejected.
	err := MarkClaimReceived(ctx, database, claim.ID, &finder.ID, &admin.ID, &admin.ID)
	if !errors.Is(err, ErrAlreadyReceived) {
		t.Errorf("expected ErrAlreadyReceived, got %v", err)
	}

	err = MarkClaimReceived(ctx, database, 42, nil, nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
