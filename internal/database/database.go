package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the SQLite database at path and ensures
// the schema exists. The parent directory is created on demand so a fresh
// deployment works from an empty data directory.
func Open(path string) (*sql.DB, error) {
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection keeps
	// writes serialized instead of surfacing SQLITE_BUSY to handlers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tg_id TEXT UNIQUE NOT NULL,
	first_name TEXT,
	last_name TEXT,
	username TEXT,
	name TEXT,
	bio TEXT,
	group_no TEXT,
	github TEXT,
	gitverse TEXT,
	linkedin TEXT,
	created_at TEXT DEFAULT (datetime('now')),
	updated_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS rooms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	difficulty INTEGER DEFAULT 1,
	intake_deadline TEXT,
	deadline TEXT,
	requirements TEXT,
	tech_stack TEXT,
	owner_user_id INTEGER NOT NULL,
	status TEXT DEFAULT 'open',
	created_at TEXT DEFAULT (datetime('now')),
	FOREIGN KEY (owner_user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS room_members (
	room_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	role TEXT,
	joined_at TEXT DEFAULT (datetime('now')),
	PRIMARY KEY (room_id, user_id),
	FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS join_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	status TEXT DEFAULT 'pending',
	created_at TEXT DEFAULT (datetime('now')),
	updated_at TEXT DEFAULT (datetime('now')),
	FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS certificates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	certificate_no TEXT NOT NULL,
	file_path TEXT NOT NULL,
	issued_at TEXT DEFAULT (datetime('now')),
	FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_rooms_owner ON rooms(owner_user_id);
CREATE INDEX IF NOT EXISTS idx_join_requests_room ON join_requests(room_id);
CREATE INDEX IF NOT EXISTS idx_join_requests_user ON join_requests(user_id);
`
