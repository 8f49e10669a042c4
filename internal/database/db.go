package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// Open opens a connection to the SQLite database at the specified path.
// WAL mode keeps dashboard reads from blocking behind an in-progress sync at
// the SQLite level. The _pragma form is the only PRAGMA syntax this driver
// applies to new connections.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single pooled connection still serializes reads behind the short
	// per-chunk write transactions; with more connections the driver returns
	// SQLITE_BUSY under write contention instead.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	// Test the connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Init initializes the database schema and seeds the default user and the
// known sync sources.
func (db *DB) Init() error {
	if _, err := db.conn.Exec(Schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	var userCount int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM user_profile").Scan(&userCount); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if userCount == 0 {
		if _, err := db.conn.Exec(
			"INSERT INTO user_profile (id, name, email) VALUES (1, 'Adam', 'adam@example.com')",
		); err != nil {
			return fmt.Errorf("failed to seed default user: %w", err)
		}
	}

	for _, source := range KnownSources {
		if _, err := db.conn.Exec(
			"INSERT OR IGNORE INTO sync_status (source, last_sync_status) VALUES (?, 'pending')",
			source,
		); err != nil {
			return fmt.Errorf("failed to seed sync status for %s: %w", source, err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying *sql.DB connection for direct use
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Health checks if the database connection is healthy
func (db *DB) Health() error {
	return db.conn.Ping()
}
