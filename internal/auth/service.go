package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/templatehub/template-manager/internal/logging"
	"github.com/templatehub/template-manager/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrDuplicateAccount   = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")

	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooWeak    = errors.New("password must meet at least 4 of 5 strength criteria")
)

// Session is what a successful login or registration hands back: the
// identity snapshot plus its bearer token.
type Session struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}

// Service orchestrates login, registration, session verification and the
// password-reset flow over injected stores.
type Service struct {
	users       UserStore
	resetTokens ResetTokenStore
	hasher      *Hasher
	codec       *TokenCodec
	logger      *logging.Logger
	resetTTL    time.Duration
}

func NewService(users UserStore, resetTokens ResetTokenStore, hasher *Hasher, codec *TokenCodec, logger *logging.Logger, resetTTL time.Duration) *Service {
	return &Service{
		users:       users,
		resetTokens: resetTokens,
		hasher:      hasher,
		codec:       codec,
		logger:      logger,
		resetTTL:    resetTTL,
	}
}

// Register creates a new account with the read-write role and returns an
// authenticated session for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateAccount
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Insert(ctx, &user.User{
		Name:          strings.TrimSpace(name),
		Email:         email,
		PasswordHash:  passwordHash,
		Role:          user.RoleReadWrite,
		IsActive:      true,
		EmailVerified: false,
		AvatarURL:     fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", email),
		Preferences:   user.DefaultPreferences(),
	})
	if err != nil {
		// The unique index closes the race between the lookup and the insert.
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.newSession(newUser)
}

// Login authenticates a user. The failure is identical whether the account
// is missing or the password is wrong, so callers cannot enumerate emails.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existing.IsActive {
		return nil, ErrAccountDeactivated
	}

	if !s.hasher.Verify(password, existing.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, existing.ID.Hex(), time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	return s.newSession(existing)
}

// VerifySession validates a bearer token and returns the *current* identity
// snapshot, re-fetched from the store so role and profile changes take
// effect before the token's natural expiry.
func (s *Service) VerifySession(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	current, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	identity := IdentityFromUser(current)
	return &identity, nil
}

// RequestPasswordReset creates a single-use reset token valid for one hour
// and returns it. Delivery to the user is the caller's concern.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	token, err := generateRandomToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(s.resetTTL)
	if err := s.resetTokens.Insert(ctx, existing.Email, token, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// ResetPassword consumes a reset token and overwrites the target account's
// password hash. The token is deleted before the hash is written, so of two
// concurrent calls with the same token exactly one succeeds and the other
// observes ErrInvalidToken.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	rt, err := s.resetTokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	if rt.Expired(time.Now()) {
		if _, err := s.resetTokens.DeleteByToken(ctx, token); err != nil {
			s.logger.Warn("failed to purge expired reset token", "error", err)
		}
		return ErrExpiredToken
	}

	deleted, err := s.resetTokens.DeleteByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if !deleted {
		// Lost the race against another consumer of the same token.
		return ErrInvalidToken
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePasswordByEmail(ctx, rt.Email, passwordHash); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// SweepExpiredResetTokens runs DeleteExpired in a loop until the context is
// canceled. Intended to be started once from main.
func (s *Service) SweepExpiredResetTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.resetTokens.DeleteExpired(ctx, time.Now())
			if err != nil {
				s.logger.Warn("reset token sweep failed", "error", err)
				continue
			}
			if count > 0 {
				s.logger.Info("swept expired reset tokens", "count", count)
			}
		}
	}
}

func (s *Service) newSession(u *user.User) (*Session, error) {
	identity := IdentityFromUser(u)
	token, err := s.codec.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &Session{User: identity, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

// validatePassword enforces the product's strength rule: at least 4 of
// {8+ chars, uppercase, lowercase, digit, special character}.
func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			hasSpecial = true
		}
	}

	score := 0
	for _, met := range []bool{len(password) >= 8, hasUpper, hasLower, hasDigit, hasSpecial} {
		if met {
			score++
		}
	}
	if score < 4 {
		return ErrPasswordTooWeak
	}
	return nil
}

// generateRandomToken creates a cryptographically secure random token.
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
