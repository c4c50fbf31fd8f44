package user

import "context"

type Repository interface {
	Create(ctx context.Context, name, lastName, email, passwordHash, role string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id int, goal, preferredLevel *string) (*User, error)
	ListTrainers(ctx context.Context) ([]User, error)
}
