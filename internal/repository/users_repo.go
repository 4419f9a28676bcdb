package repository

import (
	"context"

	"bloodlink-data/internal/domain"
)

// UsersRepository manages account rows. Strongly typed domain models, no
// map[string]any.
type UsersRepository interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (string, error)
	SetUserActive(ctx context.Context, userID string, active bool) error

	// DeleteUser removes the account and everything it owns in one
	// transaction: its donor row and that donor's responses, and its blood
	// requests with their responses. The cascade is explicit so the
	// reference-validity invariant does not depend on DB triggers.
	DeleteUser(ctx context.Context, userID string) error
}
