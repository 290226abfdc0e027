package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrUserExists is returned when a username is already taken.
var ErrUserExists = errors.New("user already exists")

// UserPatch names the user fields to change; nil fields are left alone.
type UserPatch struct {
	Username   *string
	NativeLang *string
}

// CreateUser inserts a user and returns its id.
func CreateUser(ctx context.Context, exec DBExecutor, username, nativeLang string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, fmt.Errorf("create user: empty username")
	}
	if nativeLang == "" {
		nativeLang = "en"
	}
	var id int64
	err := exec.QueryRowContext(ctx,
		`INSERT INTO users (username, native_lang) VALUES (?, ?) RETURNING id`,
		username, nativeLang).Scan(&id)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return 0, fmt.Errorf("create user %q: %w", username, ErrUserExists)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetUser looks a user up by username.
func GetUser(ctx context.Context, exec DBExecutor, username string) (*User, error) {
	return scanUser(exec.QueryRowContext(ctx,
		`SELECT id, username, native_lang, created_on FROM users WHERE username = ?`, username))
}

// GetUserByID looks a user up by id.
func GetUserByID(ctx context.Context, exec DBExecutor, id int64) (*User, error) {
	return scanUser(exec.QueryRowContext(ctx,
		`SELECT id, username, native_lang, created_on FROM users WHERE id = ?`, id))
}

// ListUsers returns users in id order, ListLimit at a time starting at offset.
func ListUsers(ctx context.Context, exec DBExecutor, offset int) ([]User, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT id, username, native_lang, created_on FROM users ORDER BY id LIMIT ? OFFSET ?`,
		ListLimit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.NativeLang, &u.CreatedOn); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.NativeLang, &u.CreatedOn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpdateUser applies patch to the user with the given id.
func UpdateUser(ctx context.Context, exec DBExecutor, id int64, patch UserPatch) error {
	var b UpdateBuilder
	b.SetString("username", patch.Username).SetString("native_lang", patch.NativeLang)
	q, args, err := b.Build("users", id)
	if err != nil {
		return err
	}
	res, err := exec.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return fmt.Errorf("update user: %w", ErrUserExists)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update user %d: %w", id, ErrNotFound)
	}
	return nil
}
