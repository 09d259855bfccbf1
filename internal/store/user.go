package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jnx001/proj-exa/internal/auth"
	"github.com/jnx001/proj-exa/internal/model"
)

// CreateUser inserts a new user. A username collision is reported as
// ErrDuplicate.
func (s *Store) CreateUser(u model.User) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO users (username, password_digest, role, full_name, email, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordDigest, u.Role, u.FullName, u.Email, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("username %q: %w", u.Username, ErrDuplicate)
		}
		slog.Error("failed to create user", "username", u.Username, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created user", "id", id, "username", u.Username, "role", u.Role)
	return id, nil
}

// Authenticate looks up a user by exact username, role, and password digest.
// Any mismatch returns nil with no error; the caller must not learn which of
// the three failed.
func (s *Store) Authenticate(username, password string, role model.Role) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, username, password_digest, role, full_name, email, created_at
		 FROM users WHERE username = ? AND password_digest = ? AND role = ?`,
		username, auth.Digest(password), role,
	).Scan(&u.ID, &u.Username, &u.PasswordDigest, &u.Role, &u.FullName, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername returns a user by username, or nil if absent.
func (s *Store) GetUserByUsername(username string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, username, password_digest, role, full_name, email, created_at
		 FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordDigest, &u.Role, &u.FullName, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns a user by ID, or nil if absent.
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(
		`SELECT id, username, password_digest, role, full_name, email, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordDigest, &u.Role, &u.FullName, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserCount returns the total number of users.
func (s *Store) UserCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
