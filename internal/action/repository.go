package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/templatehub/template-manager/internal/database"
)

var (
	ErrNotFound  = errors.New("action not found")
	ErrDuplicate = errors.New("action already exists")
)

// Repository persists user actions.
type Repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(database.CollectionUserActions)}
}

// Insert stores a new action. The unique (user, target, type) index turns
// repeats into ErrDuplicate.
func (r *Repository) Insert(ctx context.Context, a *UserAction) (*UserAction, error) {
	a.CreatedAt = time.Now()

	res, err := r.coll.InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert action: %w", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return a, nil
}

// Find retrieves a single action by its natural key.
func (r *Repository) Find(ctx context.Context, userID, targetID string, actionType Type) (*UserAction, error) {
	var a UserAction
	err := r.coll.FindOne(ctx, bson.M{
		"userId":     userID,
		"targetId":   targetID,
		"actionType": actionType,
	}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find action: %w", err)
	}
	return &a, nil
}

// Delete removes an action by its natural key and reports whether one
// existed.
func (r *Repository) Delete(ctx context.Context, userID, targetID string, actionType Type) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{
		"userId":     userID,
		"targetId":   targetID,
		"actionType": actionType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns a user's actions, optionally filtered by type.
func (r *Repository) ListByUser(ctx context.Context, userID string, actionType Type) ([]UserAction, error) {
	query := bson.M{"userId": userID}
	if actionType != "" {
		query["actionType"] = actionType
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	actions := []UserAction{}
	if err := cursor.All(ctx, &actions); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}
	return actions, nil
}

// CountByTarget returns how many users performed the action on a target.
func (r *Repository) CountByTarget(ctx context.Context, targetID string, actionType Type) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"targetId":   targetID,
		"actionType": actionType,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return count, nil
}
