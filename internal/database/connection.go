package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens a database connection for the given driver. Production runs
// use postgres; sqlite3 serves local runs and tests.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return db, nil
}

// InitializeSchema creates the read-model tables. The production Postgres
// instance owns its own migrations; this exists for sqlite3 runs and tests.
func InitializeSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS cards (
			id INTEGER PRIMARY KEY,
			deck_id INTEGER NOT NULL,
			front TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (deck_id) REFERENCES decks(id)
		)`,
		`CREATE TABLE IF NOT EXISTS card_prerequisites (
			card_id INTEGER NOT NULL,
			prerequisite_card_id INTEGER NOT NULL,
			PRIMARY KEY (card_id, prerequisite_card_id),
			FOREIGN KEY (card_id) REFERENCES cards(id),
			FOREIGN KEY (prerequisite_card_id) REFERENCES cards(id)
		)`,
		`CREATE TABLE IF NOT EXISTS session_tracking (
			session_id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP,
			device_category TEXT DEFAULT '',
			utc_offset_minutes INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS review_events (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			card_id INTEGER NOT NULL,
			deck_id INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			reviewed_at TIMESTAMP NOT NULL,
			response_quality INTEGER NOT NULL,
			response_time_ms INTEGER NOT NULL DEFAULT 0,
			interval_before REAL NOT NULL DEFAULT 0,
			interval_after REAL NOT NULL DEFAULT 0,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			was_correct BOOLEAN NOT NULL,
			FOREIGN KEY (card_id) REFERENCES cards(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_events_user_time
			ON review_events(user_id, reviewed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_review_events_card_time
			ON review_events(card_id, reviewed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_review_events_session
			ON review_events(session_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
