package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/templatehub/template-manager/internal/user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Identity is the public-facing projection of a user embedded in session
// tokens and API responses.
type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
}

// IdentityFromUser projects a stored user onto its identity snapshot.
func IdentityFromUser(u *user.User) Identity {
	return Identity{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

// TokenCodec issues and validates self-contained session tokens.
// Uses PASETO v4.local (symmetric encryption with XChaCha20-Poly1305), so
// validity is determined entirely by decryption success and the embedded
// expiration instant.
type TokenCodec struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
}

func NewTokenCodec(symmetricKey []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &TokenCodec{symmetricKey: key, ttl: ttl}, nil
}

// Issue encrypts the identity snapshot with an expiry of now + TTL and
// returns the opaque token string.
func (c *TokenCodec) Issue(id Identity) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(c.ttl))
	token.SetString("id", id.ID)
	token.SetString("name", id.Name)
	token.SetString("email", id.Email)
	token.SetString("role", string(id.Role))
	token.SetString("avatar_url", id.AvatarURL)

	return token.V4Encrypt(c.symmetricKey, nil), nil
}

// Parse decrypts and validates a token and returns the embedded snapshot.
// Expired tokens yield ErrExpiredToken; every other failure mode (malformed
// encoding, wrong key, missing claims) collapses to ErrInvalidToken.
func (c *TokenCodec) Parse(tokenStr string) (*Identity, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(c.symmetricKey, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; a RuleError means the
		// token decrypted fine but a validity rule (expiry) failed.
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	id, err := token.GetString("id")
	if err != nil {
		return nil, ErrInvalidToken
	}
	name, err := token.GetString("name")
	if err != nil {
		return nil, ErrInvalidToken
	}
	email, err := token.GetString("email")
	if err != nil {
		return nil, ErrInvalidToken
	}
	role, err := token.GetString("role")
	if err != nil {
		return nil, ErrInvalidToken
	}
	avatarURL, err := token.GetString("avatar_url")
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Identity{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      user.Role(role),
		AvatarURL: avatarURL,
	}, nil
}
