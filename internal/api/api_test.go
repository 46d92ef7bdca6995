package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", "", string(hash), model.RoleAdmin)

	return server, database, login(t, server, "admin", "password123")
}

// login obtains a token via the login endpoint.
func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}
	return token
}

// registerUser creates a regular account through the API and logs it in.
func registerUser(t *testing.T, server *httptest.Server, username string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": "password123"})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}
	return login(t, server, username, "password123")
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// doJSON runs an authenticated request and decodes the JSON response.
func doJSON(t *testing.T, method, url, token string, body any, wantStatus int) map[string]any {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", method, url, wantStatus, resp.StatusCode)
	}

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return decoded
}

func TestLoginEndpoint(t *testing.T) {
	server, _, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/reports")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _, _ := setupTestServer(t)
	token := registerUser(t, server, "alice")

	doJSON(t, "POST", server.URL+"/api/auth/logout", token, nil, http.StatusOK)

	req, _ := authRequest("GET", server.URL+"/api/reports", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

// TestFoundReportLifecycle walks the full happy path: a found report is
// filed, approved, claimed, and resolved, and a second resolve attempt
// conflicts.
func TestFoundReportLifecycle(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	finderToken := registerUser(t, server, "finder")
	claimantToken := registerUser(t, server, "claimant")

	// Finder files a found report.
	created := doJSON(t, "POST", server.URL+"/api/reports", finderToken, map[string]any{
		"type":      "found",
		"item_name": "Wallet",
		"location":  "Cafeteria",
	}, http.StatusCreated)
	if created["status"] != "pending" {
		t.Errorf("expected new report pending, got %v", created["status"])
	}
	reportID := int64(created["id"].(float64))
	reportURL := server.URL + "/api/reports/1"

	// Claiming before approval is allowed, but resolving is not; approve first.
	doJSON(t, "PATCH", reportURL+"/approve", adminToken, nil, http.StatusOK)

	// Claimant files a claim; the finder gets a notification.
	claimResp := doJSON(t, "POST", reportURL+"/claim", claimantToken, map[string]string{
		"message": "It has my ID inside",
	}, http.StatusCreated)
	if claimResp["status"] != "claim created" {
		t.Errorf("unexpected claim response: %v", claimResp)
	}
	if _, ok := claimResp["claim_id"]; !ok {
		t.Error("expected claim_id in response")
	}

	unread := doJSON(t, "GET", server.URL+"/api/notifications/unread-count", finderToken, nil, http.StatusOK)
	if int(unread["unread_count"].(float64)) != 1 {
		t.Errorf("expected 1 unread notification for finder, got %v", unread["unread_count"])
	}

	// Look up the claimant's user ID for the resolve call.
	claimant, _ := store.GetUserByUsername(context.Background(), database, "claimant")

	// Finder resolves the report in the claimant's favor.
	resolved := doJSON(t, "POST", reportURL+"/resolve", finderToken, map[string]any{
		"claimant_id": claimant.ID,
	}, http.StatusOK)
	if _, hasWarning := resolved["warning"]; hasWarning {
		t.Errorf("unexpected warning on resolve: %v", resolved["warning"])
	}

	got := doJSON(t, "GET", reportURL, finderToken, nil, http.StatusOK)
	if got["status"] != "resolved" {
		t.Errorf("expected status 'resolved', got %v", got["status"])
	}

	count, _ := store.CountResolutionLogs(context.Background(), database, reportID)
	if count != 1 {
		t.Errorf("expected 1 resolution log, got %d", count)
	}

	// A second resolve attempt conflicts.
	req, _ := authRequest("POST", reportURL+"/resolve", finderToken, map[string]any{"claimant_id": claimant.ID})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for second resolve, got %d", resp.StatusCode)
	}
	var conflict map[string]string
	json.NewDecoder(resp.Body).Decode(&conflict)
	resp.Body.Close()
	if conflict["code"] != "already_resolved" {
		t.Errorf("expected code 'already_resolved', got %q", conflict["code"])
	}
}

func TestResolveRequiresClaimant(t *testing.T) {
	server, _, adminToken := setupTestServer(t)
	finderToken := registerUser(t, server, "finder")

	doJSON(t, "POST", server.URL+"/api/reports", finderToken, map[string]any{
		"type": "found", "item_name": "Keys",
	}, http.StatusCreated)
	doJSON(t, "PATCH", server.URL+"/api/reports/1/approve", adminToken, nil, http.StatusOK)

	req, _ := authRequest("POST", server.URL+"/api/reports/1/resolve", finderToken, map[string]any{})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without claimant_id, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestResolveRequiresOwnerOrAdmin(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	finderToken := registerUser(t, server, "finder")
	otherToken := registerUser(t, server, "other")

	doJSON(t, "POST", server.URL+"/api/reports", finderToken, map[string]any{
		"type": "found", "item_name": "Keys",
	}, http.StatusCreated)
	doJSON(t, "PATCH", server.URL+"/api/reports/1/approve", adminToken, nil, http.StatusOK)

	other, _ := store.GetUserByUsername(context.Background(), database, "other")

	req, _ := authRequest("POST", server.URL+"/api/reports/1/resolve", otherToken, map[string]any{"claimant_id": other.ID})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner resolve, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin may resolve someone else's report.
	doJSON(t, "POST", server.URL+"/api/reports/1/resolve", adminToken, map[string]any{"claimant_id": other.ID}, http.StatusOK)
}

func TestModerationRequiresAdmin(t *testing.T) {
	server, _, _ := setupTestServer(t)
	userToken := registerUser(t, server, "user")

	doJSON(t, "POST", server.URL+"/api/reports", userToken, map[string]any{
		"type": "lost", "item_name": "Umbrella",
	}, http.StatusCreated)

	req, _ := authRequest("PATCH", server.URL+"/api/reports/1/approve", userToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin approve, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestClaimLostReportRejected(t *testing.T) {
	server, _, _ := setupTestServer(t)
	ownerToken := registerUser(t, server, "owner")
	claimantToken := registerUser(t, server, "claimant")

	doJSON(t, "POST", server.URL+"/api/reports", ownerToken, map[string]any{
		"type": "lost", "item_name": "Umbrella",
	}, http.StatusCreated)

	req, _ := authRequest("POST", server.URL+"/api/reports/1/claim", claimantToken, map[string]string{"message": "mine"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for claiming a lost report, got %d", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["code"] != "wrong_report_type" {
		t.Errorf("expected code 'wrong_report_type', got %q", body["code"])
	}
}

func TestMarkFoundNotifiesOwner(t *testing.T) {
	server, database, _ := setupTestServer(t)
	ownerToken := registerUser(t, server, "owner")
	finderToken := registerUser(t, server, "finder")

	doJSON(t, "POST", server.URL+"/api/reports", ownerToken, map[string]any{
		"type": "lost", "item_name": "Umbrella",
	}, http.StatusCreated)

	resp := doJSON(t, "POST", server.URL+"/api/reports/1/found", finderToken, map[string]string{
		"message": "it is at the library front desk",
	}, http.StatusOK)
	if resp["status"] != "item found notification sent" {
		t.Errorf("unexpected response: %v", resp)
	}

	unread := doJSON(t, "GET", server.URL+"/api/notifications/unread-count", ownerToken, nil, http.StatusOK)
	if int(unread["unread_count"].(float64)) != 1 {
		t.Errorf("expected 1 unread notification for owner, got %v", unread["unread_count"])
	}

	// The finder's message reaches the owner as the notification detail.
	owner, _ := store.GetUserByUsername(context.Background(), database, "owner")
	notifications, _ := store.ListNotifications(context.Background(), database, owner.ID)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Message != "finder reported finding your lost item." {
		t.Errorf("unexpected message: %q", notifications[0].Message)
	}
	if notifications[0].DetailedMessage != "it is at the library front desk" {
		t.Errorf("expected finder's message as detail, got %q", notifications[0].DetailedMessage)
	}

	// Marking a found report as found does not make sense.
	doJSON(t, "POST", server.URL+"/api/reports", finderToken, map[string]any{
		"type": "found", "item_name": "Keys",
	}, http.StatusCreated)
	req, _ := authRequest("POST", server.URL+"/api/reports/2/found", ownerToken, nil)
	raw, _ := http.DefaultClient.Do(req)
	if raw.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for found report, got %d", raw.StatusCode)
	}
	raw.Body.Close()
}

func TestNotificationUpdate(t *testing.T) {
	server, database, _ := setupTestServer(t)
	ownerToken := registerUser(t, server, "owner")
	otherToken := registerUser(t, server, "other")

	owner, _ := store.GetUserByUsername(context.Background(), database, "owner")
	n, _ := store.CreateNotification(context.Background(), database, owner.ID, "hello", "", nil)

	// Missing is_read is rejected, not defaulted.
	req, _ := authRequest("PATCH", server.URL+"/api/notifications/1", ownerToken, map[string]any{})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without is_read, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Another user cannot touch it.
	req, _ = authRequest("PATCH", server.URL+"/api/notifications/1", otherToken, map[string]any{"is_read": true})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The owner can.
	updated := doJSON(t, "PATCH", server.URL+"/api/notifications/1", ownerToken, map[string]any{"is_read": true}, http.StatusOK)
	if updated["is_read"] != true {
		t.Errorf("expected is_read true, got %v", updated["is_read"])
	}

	got, _ := store.GetNotification(context.Background(), database, n.ID)
	if !got.IsRead {
		t.Error("expected notification marked read in store")
	}
}

func TestRoleChangeWritesActivity(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	registerUser(t, server, "target")

	target, _ := store.GetUserByUsername(context.Background(), database, "target")

	doJSON(t, "PUT", server.URL+"/api/users/2", adminToken, map[string]string{"role": "admin"}, http.StatusOK)

	entries, _ := store.ListActivity(context.Background(), database, target.ID, true)
	if len(entries) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", len(entries))
	}
	if entries[0].Action != "admin (admin) updated target's role to admin" {
		t.Errorf("unexpected audit text: %q", entries[0].Action)
	}

	// Setting the same role again is a no-op and is not audited.
	doJSON(t, "PUT", server.URL+"/api/users/2", adminToken, map[string]string{"role": "admin"}, http.StatusOK)
	entries, _ = store.ListActivity(context.Background(), database, target.ID, true)
	if len(entries) != 1 {
		t.Errorf("expected no new audit entry for unchanged role, got %d", len(entries))
	}
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	server, _, _ := setupTestServer(t)
	userToken := registerUser(t, server, "user")

	req, _ := authRequest("GET", server.URL+"/api/users", userToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin user list, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCommentsFlow(t *testing.T) {
	server, _, adminToken := setupTestServer(t)
	userToken := registerUser(t, server, "user")
	otherToken := registerUser(t, server, "other")

	doJSON(t, "POST", server.URL+"/api/reports", userToken, map[string]any{
		"type": "lost", "item_name": "Umbrella",
	}, http.StatusCreated)

	comment := doJSON(t, "POST", server.URL+"/api/reports/1/comments", userToken, map[string]string{
		"content": "Saw one like this at the station",
	}, http.StatusCreated)
	if comment["content"] != "Saw one like this at the station" {
		t.Errorf("unexpected comment: %v", comment)
	}

	// Another user cannot delete it, an admin can.
	req, _ := authRequest("DELETE", server.URL+"/api/comments/1", otherToken, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-author delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	doJSON(t, "DELETE", server.URL+"/api/comments/1", adminToken, nil, http.StatusOK)
}

func TestMarkClaimReceivedConflict(t *testing.T) {
	server, _, adminToken := setupTestServer(t)
	finderToken := registerUser(t, server, "finder")
	claimantToken := registerUser(t, server, "claimant")

	doJSON(t, "POST", server.URL+"/api/reports", finderToken, map[string]any{
		"type": "found", "item_name": "Wallet",
	}, http.StatusCreated)
	doJSON(t, "POST", server.URL+"/api/reports/1/claim", claimantToken, map[string]string{"message": "mine"}, http.StatusCreated)

	doJSON(t, "PUT", server.URL+"/api/claims/1/received", adminToken, map[string]any{}, http.StatusOK)

	// Recording the hand-off twice conflicts instead of failing opaquely.
	req, _ := authRequest("PUT", server.URL+"/api/claims/1/received", adminToken, map[string]any{})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for second hand-off, got %d", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["code"] != "already_received" {
		t.Errorf("expected code 'already_received', got %q", body["code"])
	}
}

func TestClaimsListVisibility(t *testing.T) {
	server, _, adminToken := setupTestServer(t)
	finderToken := registerUser(t, server, "finder")
	aToken := registerUser(t, server, "a")
	bToken := registerUser(t, server, "b")

	doJSON(t, "POST", server.URL+"/api/reports", finderToken, map[string]any{
		"type": "found", "item_name": "Wallet",
	}, http.StatusCreated)
	doJSON(t, "POST", server.URL+"/api/reports/1/claim", aToken, map[string]string{"message": "mine"}, http.StatusCreated)
	doJSON(t, "POST", server.URL+"/api/reports/1/claim", bToken, map[string]string{"message": "no, mine"}, http.StatusCreated)

	listFor := func(token string) int {
		req, _ := authRequest("GET", server.URL+"/api/claims", token, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		var claims []model.Claim
		json.NewDecoder(resp.Body).Decode(&claims)
		return len(claims)
	}

	if n := listFor(aToken); n != 1 {
		t.Errorf("expected 1 claim for a, got %d", n)
	}
	if n := listFor(adminToken); n != 2 {
		t.Errorf("expected 2 claims for admin, got %d", n)
	}
}
