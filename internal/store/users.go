package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/magacin/internal/model"
)

const userColumns = `id, name, password_hash, role, user_code, created_at, deleted_at`

// CreateUser creates a new user. passwordHash may be empty for users who
// only appear in the ledgers and never log in.
func CreateUser(ctx context.Context, db *sql.DB, name, passwordHash, role, userCode string) (*model.User, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, name, password_hash, role, user_code) VALUES (?, ?, ?, ?, ?)`,
		id, name, passwordHash, role, strings.ToUpper(userCode),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByName returns the active user with the given name.
func GetUserByName(ctx context.Context, db *sql.DB, name string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE name = ? AND deleted_at IS NULL`, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by name: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	return queryUsers(ctx, db,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY name`)
}

// ListUsersByRole returns the non-deleted users holding role, ordered by name.
func ListUsersByRole(ctx context.Context, db *sql.DB, role string) ([]model.User, error) {
	return queryUsers(ctx, db,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL AND role = ? ORDER BY name`, role)
}

func queryUsers(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.User, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUser(s scanner) (*model.User, error) {
	u := &model.User{}
	if err := s.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Role, &u.UserCode, &u.CreatedAt, &u.DeletedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUserCode assigns a new confirmation code to a user.
func UpdateUserCode(ctx context.Context, db *sql.DB, id, code string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET user_code = ? WHERE id = ? AND deleted_at IS NULL`,
		strings.ToUpper(code), id,
	)
	if err != nil {
		return fmt.Errorf("updating user code: %w", err)
	}
	return expectOneRow(result, "user not found")
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return expectOneRow(result, "user not found")
}

// DeleteUser soft-deletes a user. Ledger history keeps the name.
func DeleteUser(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return expectOneRow(result, "user not found")
}

func expectOneRow(result sql.Result, msg string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s", msg)
	}
	return nil
}
