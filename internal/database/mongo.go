package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/templatehub/template-manager/internal/config"
)

// Collection names used across the repositories.
const (
	CollectionUsers            = "users"
	CollectionTemplates        = "templates"
	CollectionTemplateVersions = "template_versions"
	CollectionUserActions      = "user_actions"
	CollectionComments         = "comments"
	CollectionResetTokens      = "password_reset_tokens"
)

// Connect opens a Mongo client and verifies the connection, retrying the
// initial ping with fibonacci backoff so a slow-starting database does not
// kill the service on boot.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to open mongo client: %w", err)
	}

	backoff := retry.WithMaxDuration(cfg.ConnectTimeout, retry.NewFibonacci(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(cfg.Database), nil
}

// EnsureIndexes creates the index set the repositories rely on. Safe to run
// on every boot; Mongo treats existing identical indexes as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		},
		CollectionTemplates: {
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
			{Keys: bson.D{{Key: "isPublic", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
		},
		CollectionTemplateVersions: {
			{Keys: bson.D{{Key: "templateId", Value: 1}, {Key: "version", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "templateId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollectionUserActions: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "targetId", Value: 1}, {Key: "actionType", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "actionType", Value: 1}}},
			{Keys: bson.D{{Key: "targetId", Value: 1}, {Key: "actionType", Value: 1}}},
		},
		CollectionComments: {
			{Keys: bson.D{{Key: "templateId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
			{Keys: bson.D{{Key: "parentId", Value: 1}}},
		},
		CollectionResetTokens: {
			{Keys: bson.D{{Key: "tokenHash", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}

	return nil
}
