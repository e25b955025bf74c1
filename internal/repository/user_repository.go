package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// UserRepository provides data access methods for the user table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// InsertUser stores a new user. ID and CreatedAt must already be set.
func (r *UserRepository) InsertUser(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user (id, name, created_at) VALUES (?, ?, ?)`,
		u.ID, u.Name, formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID. Returns apperrors.ErrUserNotFound if there is none.
func (r *UserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM user WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user table: %w", err)
	}
	if u.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsers retrieves every user, oldest first.
func (r *UserRepository) GetUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM user ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user table: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		var createdAtStr string
		if err := rows.Scan(&u.ID, &u.Name, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan user table results: %w", err)
		}
		if u.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user table: %w", err)
	}
	return users, nil
}
