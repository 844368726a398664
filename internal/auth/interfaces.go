package auth

import (
	"context"
	"time"

	"github.com/templatehub/template-manager/internal/user"
)

// UserStore is the credential-store surface the auth service needs. The
// mongo-backed user.Repository implements it; tests use in-memory fakes.
type UserStore interface {
	Insert(ctx context.Context, u *user.User) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
}

// ResetTokenStore persists single-use password reset tokens.
type ResetTokenStore interface {
	Insert(ctx context.Context, email, token string, expiresAt time.Time) error
	FindByToken(ctx context.Context, token string) (*ResetToken, error)
	// DeleteByToken reports whether a token document was actually removed,
	// which is what serializes concurrent consumers of the same token.
	DeleteByToken(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
