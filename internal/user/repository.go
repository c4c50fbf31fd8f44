package user

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, lastName, email, passwordHash, role string) (*User, error) {
	query := `
		INSERT INTO users (name, last_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, last_name, email, password_hash, role, goal, preferred_level, created_at
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, name, lastName, email, passwordHash, role)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, last_name, email, password_hash, role, goal, preferred_level, created_at
		FROM users
		WHERE email = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, name, last_name, email, password_hash, role, goal, preferred_level, created_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id int, goal, preferredLevel *string) (*User, error) {
	query := `
		UPDATE users
		SET goal = $2, preferred_level = $3
		WHERE id = $1
		RETURNING id, name, last_name, email, password_hash, role, goal, preferred_level, created_at
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, id, goal, preferredLevel)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) ListTrainers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, name, last_name, email, password_hash, role, goal, preferred_level, created_at
		FROM users
		WHERE role = 'trainer'
		ORDER BY name ASC, last_name ASC
	`

	var trainers []User
	err := r.db.SelectContext(ctx, &trainers, query)
	if err != nil {
		return nil, err
	}

	return trainers, nil
}
