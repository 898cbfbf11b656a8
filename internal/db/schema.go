package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    password_hash TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL CHECK (role IN ('admin', 'manager', 'pickup', 'reservation')),
    user_code     TEXT NOT NULL DEFAULT '',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_name_active
    ON users(name) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS projects (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL UNIQUE,
    start_date   TEXT NOT NULL,
    end_date     TEXT NOT NULL,
    color        TEXT NOT NULL DEFAULT '',
    pdf_url      TEXT NOT NULL DEFAULT '',
    pdf_document TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (start_date <= end_date)
);

CREATE TABLE IF NOT EXISTS items (
    id         TEXT PRIMARY KEY,
    code       TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    project    TEXT NOT NULL DEFAULT '',
    stock      INTEGER NOT NULL CHECK (stock >= 0),
    available  INTEGER NOT NULL,
    price      TEXT NOT NULL DEFAULT '0',
    location   TEXT NOT NULL DEFAULT '',
    version    INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    CHECK (available >= 0 AND available <= stock)
);

CREATE TABLE IF NOT EXISTS reservations (
    id               TEXT PRIMARY KEY,
    item_id          TEXT NOT NULL REFERENCES items(id),
    quantity         INTEGER NOT NULL CHECK (quantity > 0),
    reserved_by      TEXT NOT NULL,
    reservation_code TEXT NOT NULL UNIQUE,
    notes            TEXT,
    reserved_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS pickups (
    id                TEXT PRIMARY KEY,
    item_id           TEXT NOT NULL REFERENCES items(id),
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    picked_up_by      TEXT NOT NULL,
    confirmation_code TEXT,
    notes             TEXT,
    picked_up_at      DATETIME NOT NULL,
    confirmed_at      DATETIME
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

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: ledger history is listed per item, newest first.
	`CREATE INDEX IF NOT EXISTS idx_reservations_item
	     ON reservations(item_id, reserved_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_pickups_item
	     ON pickups(item_id, picked_up_at DESC)`,
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
