package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/templatehub/template-manager/internal/database"
)

var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetToken is a single-use, time-limited credential granting permission to
// set a new password for the linked email.
type ResetToken struct {
	Email     string    `bson:"email"`
	TokenHash string    `bson:"tokenHash"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

// Expired reports whether the token is past its expiration instant.
func (t *ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// ResetTokenRepository stores reset tokens in Mongo. Tokens are sha256-hashed
// at rest so a database leak does not hand out usable credentials.
type ResetTokenRepository struct {
	coll *mongo.Collection
}

func NewResetTokenRepository(db *mongo.Database) *ResetTokenRepository {
	return &ResetTokenRepository{coll: db.Collection(database.CollectionResetTokens)}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Insert persists a new reset token.
func (r *ResetTokenRepository) Insert(ctx context.Context, email, token string, expiresAt time.Time) error {
	doc := ResetToken{
		Email:     email,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert reset token: %w", err)
	}
	return nil
}

// FindByToken looks up a token by its opaque string.
func (r *ResetTokenRepository) FindByToken(ctx context.Context, token string) (*ResetToken, error) {
	var rt ResetToken
	err := r.coll.FindOne(ctx, bson.M{"tokenHash": hashToken(token)}).Decode(&rt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}
	return &rt, nil
}

// DeleteByToken removes a token and reports whether a document was deleted.
// Mongo's single-document delete is atomic, so of two racing callers exactly
// one observes true.
func (r *ResetTokenRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"tokenHash": hashToken(token)})
	if err != nil {
		return false, fmt.Errorf("failed to delete reset token: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteExpired purges every token past its expiration instant. Idempotent
// and safe to run concurrently with normal consumption.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return res.DeletedCount, nil
}
