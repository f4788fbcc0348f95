package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/models"
)

const userColumns = `id, name, COALESCE(furigana, ''), COALESCE(postal_code, ''), COALESCE(address, ''),
	COALESCE(phone_number, ''), email, password_hash, role, enabled, created_at, updated_at`

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (
				name, furigana, postal_code, address, phone_number,
				email, password_hash, role, enabled, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if user.Role == "" {
		user.Role = models.RoleGeneral
	}
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		user.Name,
		user.Furigana,
		user.PostalCode,
		user.Address,
		user.PhoneNumber,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.Enabled,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
}

func (db *DB) queryUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Furigana, &u.PostalCode, &u.Address, &u.PhoneNumber,
		&u.Email, &u.PasswordHash, &u.Role, &u.Enabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateUser saves profile fields. Password and role are left untouched.
func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET
				name = ?, furigana = ?, postal_code = ?, address = ?,
				phone_number = ?, email = ?, updated_at = ?
			WHERE id = ?`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		user.Name, user.Furigana, user.PostalCode, user.Address,
		user.PhoneNumber, strings.ToLower(user.Email), now, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = now
	return nil
}
