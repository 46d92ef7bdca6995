package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    display_name  TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS reports (
    id          INTEGER PRIMARY KEY,
    type        TEXT NOT NULL CHECK (type IN ('lost', 'found')),
    status      TEXT NOT NULL DEFAULT 'pending'
                CHECK (status IN ('pending', 'approved', 'rejected', 'resolved')),
    reported_by INTEGER NOT NULL REFERENCES users(id),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS lost_items (
    report_id          INTEGER PRIMARY KEY REFERENCES reports(id) ON DELETE CASCADE,
    item_name          TEXT NOT NULL,
    description        TEXT,
    category           TEXT,
    location_last_seen TEXT,
    photo              BLOB,
    photo_mime         TEXT,
    date_lost          DATETIME
);

CREATE TABLE IF NOT EXISTS found_items (
    report_id      INTEGER PRIMARY KEY REFERENCES reports(id) ON DELETE CASCADE,
    item_name      TEXT NOT NULL,
    description    TEXT,
    category       TEXT,
    location_found TEXT,
    photo          BLOB,
    photo_mime     TEXT,
    date_found     DATETIME
);

CREATE TABLE IF NOT EXISTS claims (
    id            INTEGER PRIMARY KEY,
    report_id     INTEGER NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
    claimed_by    INTEGER NOT NULL REFERENCES users(id),
    received_from INTEGER REFERENCES users(id),
    supervised_by INTEGER REFERENCES users(id),
    verified_by   INTEGER REFERENCES users(id),
    message       TEXT,
    received      INTEGER NOT NULL DEFAULT 0,
    date_claimed  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    date_received DATETIME
);

CREATE TABLE IF NOT EXISTS notifications (
    id                INTEGER PRIMARY KEY,
    user_id           INTEGER NOT NULL REFERENCES users(id),
    message           TEXT NOT NULL,
    detailed_message  TEXT,
    related_report_id INTEGER REFERENCES reports(id) ON DELETE SET NULL,
    is_read           INTEGER NOT NULL DEFAULT 0,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_unread
    ON notifications(user_id) WHERE is_read = 0;

CREATE TABLE IF NOT EXISTS resolution_logs (
    id            INTEGER PRIMARY KEY,
    report_id     INTEGER NOT NULL UNIQUE REFERENCES reports(id),
    resolved_by   INTEGER NOT NULL REFERENCES users(id),
    claimed_by    INTEGER REFERENCES users(id) ON DELETE SET NULL,
    receiver_name TEXT NOT NULL,
    giver_name    TEXT NOT NULL,
    report_title  TEXT NOT NULL,
    date_resolved DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS activity_logs (
    id              INTEGER PRIMARY KEY,
    user_id         INTEGER NOT NULL REFERENCES users(id),
    report_id       INTEGER REFERENCES reports(id),
    notification_id INTEGER REFERENCES notifications(id),
    action          TEXT NOT NULL,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS comments (
    id         INTEGER PRIMARY KEY,
    report_id  INTEGER NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    content    TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: backfill display names for accounts created before the
	// display_name column existed.
	`UPDATE users SET display_name = username WHERE display_name = ''`,
}

// EnsureSchema creates all tables and indexes if they don't already exist
// and applies pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
