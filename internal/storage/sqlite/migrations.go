package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Timestamps are stored as Unix seconds; booleans as 0/1 integers.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    salt TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    face_value REAL NOT NULL,
    serial_number TEXT UNIQUE NOT NULL,
    date_recorded INTEGER NOT NULL,
    printing_location TEXT,
    series_year INTEGER,
    is_star_note INTEGER,
    is_star_filled INTEGER,
    image_path TEXT,
    estimated_value REAL,
    added_by INTEGER NOT NULL,
    FOREIGN KEY (added_by) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_bills_added_by ON bills(added_by);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
