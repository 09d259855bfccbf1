package store

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, e.g. registering an already-taken username.
	ErrDuplicate = errors.New("duplicate")
	// ErrNotFound is returned when a targeted row does not exist.
	ErrNotFound = errors.New("not found")
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_digest TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin', 'student')),
		full_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		total_marks INTEGER NOT NULL,
		created_by INTEGER,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (created_by) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exam_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		option_a TEXT NOT NULL,
		option_b TEXT NOT NULL,
		option_c TEXT NOT NULL,
		option_d TEXT NOT NULL,
		correct_option TEXT NOT NULL CHECK (correct_option IN ('A', 'B', 'C', 'D')),
		marks INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (exam_id) REFERENCES exams(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		exam_id INTEGER NOT NULL,
		score INTEGER NOT NULL,
		total_marks INTEGER NOT NULL,
		submitted_at DATETIME NOT NULL,
		FOREIGN KEY (student_id) REFERENCES users(id),
		FOREIGN KEY (exam_id) REFERENCES exams(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.ensureUserColumns()
}

// ensureUserColumns adds the full_name and email columns to a users table
// created by a deployment that predates them. Running it against a current
// schema is a no-op.
func (s *Store) ensureUserColumns() error {
	for _, col := range []struct{ name, ddl string }{
		{"full_name", `ALTER TABLE users ADD COLUMN full_name TEXT NOT NULL DEFAULT ''`},
		{"email", `ALTER TABLE users ADD COLUMN email TEXT NOT NULL DEFAULT ''`},
	} {
		var n int
		err := s.db.QueryRow(
			`SELECT COUNT(*) FROM pragma_table_info('users') WHERE name = ?`, col.name,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("probe users.%s: %w", col.name, err)
		}
		if n > 0 {
			continue
		}
		if _, err := s.db.Exec(col.ddl); err != nil {
			return fmt.Errorf("add users.%s: %w", col.name, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite uniqueness constraint
// failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
