package user

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	// FindByID returns nil when the user does not exist.
	FindByID(ctx context.Context, userID uint) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, userID uint) (*User, error) {
	query := `
		SELECT id, name, email, phone, created_at
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}
