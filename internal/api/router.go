package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	reportsHandler := &ReportsHandler{DB: db}
	claimsHandler := &ClaimsHandler{DB: db}
	notificationsHandler := &NotificationsHandler{DB: db}
	logsHandler := &LogsHandler{DB: db}
	commentsHandler := &CommentsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: register and login.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated auth routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.UpdateRole))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Reports.
	mux.Handle("POST /api/reports", authMW(http.HandlerFunc(reportsHandler.Create)))
	mux.Handle("GET /api/reports", authMW(http.HandlerFunc(reportsHandler.List)))
	mux.Handle("GET /api/reports/{id}", authMW(http.HandlerFunc(reportsHandler.Get)))
	mux.Handle("PATCH /api/reports/{id}/approve", authMW(requireAdmin(http.HandlerFunc(reportsHandler.Approve))))
	mux.Handle("PATCH /api/reports/{id}/reject", authMW(requireAdmin(http.HandlerFunc(reportsHandler.Reject))))
	mux.Handle("POST /api/reports/{id}/claim", authMW(http.HandlerFunc(reportsHandler.Claim)))
	mux.Handle("POST /api/reports/{id}/found", authMW(http.HandlerFunc(reportsHandler.MarkFound)))
	mux.Handle("POST /api/reports/{id}/resolve", authMW(http.HandlerFunc(reportsHandler.Resolve)))
	mux.Handle("PUT /api/reports/{id}/photo", authMW(http.HandlerFunc(reportsHandler.UploadPhoto)))
	mux.Handle("GET /api/reports/{id}/photo", authMW(http.HandlerFunc(reportsHandler.GetPhoto)))

	// Comments on reports.
	mux.Handle("POST /api/reports/{id}/comments", authMW(http.HandlerFunc(commentsHandler.Create)))
	mux.Handle("GET /api/reports/{id}/comments", authMW(http.HandlerFunc(commentsHandler.List)))
	mux.Handle("DELETE /api/comments/{id}", authMW(http.HandlerFunc(commentsHandler.Delete)))

	// Claims.
	mux.Handle("GET /api/claims", authMW(http.HandlerFunc(claimsHandler.List)))
	mux.Handle("PUT /api/claims/{id}/received", authMW(requireAdmin(http.HandlerFunc(claimsHandler.MarkReceived))))

	// Notifications (pull model, own only).
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("GET /api/notifications/unread-count", authMW(http.HandlerFunc(notificationsHandler.UnreadCount)))
	mux.Handle("PATCH /api/notifications/{id}", authMW(http.HandlerFunc(notificationsHandler.Update)))

	// Audit trails.
	mux.Handle("GET /api/resolutions", authMW(http.HandlerFunc(logsHandler.Resolutions)))
	mux.Handle("GET /api/activity", authMW(http.HandlerFunc(logsHandler.Activity)))

	return TimeoutMiddleware(mux)
}
