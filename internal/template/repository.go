package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/templatehub/template-manager/internal/database"
)

var ErrNotFound = errors.New("template not found")

// Repository persists templates and their version snapshots.
type Repository struct {
	templates *mongo.Collection
	versions  *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		templates: db.Collection(database.CollectionTemplates),
		versions:  db.Collection(database.CollectionTemplateVersions),
	}
}

// Insert stores a new template at version 1 with zeroed counters and writes
// the initial version snapshot.
func (r *Repository) Insert(ctx context.Context, t *Template) (*Template, error) {
	now := time.Now()
	t.Version = 1
	t.ViewCount = 0
	t.StarCount = 0
	t.BookmarkCount = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Tags == nil {
		t.Tags = []string{}
	}

	res, err := r.templates.InsertOne(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to insert template: %w", err)
	}
	t.ID = res.InsertedID.(primitive.ObjectID)

	if err := r.insertSnapshot(ctx, t, "Initial version", t.AuthorID); err != nil {
		return nil, err
	}

	return t, nil
}

// List returns templates matching the filter, most recently updated first.
func (r *Repository) List(ctx context.Context, f Filter) ([]Template, error) {
	query := bson.M{}
	if f.Category != "" && f.Category != "all" {
		query["category"] = f.Category
	}
	if f.AuthorID != "" {
		query["authorId"] = f.AuthorID
	}
	if f.IsPublic != nil {
		query["isPublic"] = *f.IsPublic
	}
	if f.Search != "" {
		query["$text"] = bson.M{"$search": f.Search}
	}

	cursor, err := r.templates.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	templates := []Template{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	return templates, nil
}

// FindByID retrieves a template by its hex object ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*Template, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var t Template
	err = r.templates.FindOne(ctx, bson.M{"_id": oid}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return &t, nil
}

// Update applies the non-nil fields, bumps the version counter and records a
// snapshot of the new state.
func (r *Repository) Update(ctx context.Context, id, editorID string, upd Update) (*Template, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	fields := bson.M{"updatedAt": time.Now()}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Content != nil {
		fields["content"] = *upd.Content
	}
	if upd.Category != nil {
		fields["category"] = *upd.Category
	}
	if upd.Tags != nil {
		fields["tags"] = *upd.Tags
	}
	if upd.IsPublic != nil {
		fields["isPublic"] = *upd.IsPublic
	}
	if upd.ThumbnailURL != nil {
		fields["thumbnailUrl"] = *upd.ThumbnailURL
	}

	var t Template
	err = r.templates.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields, "$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	changes := upd.Changes
	if changes == "" {
		changes = "Updated"
	}
	if err := r.insertSnapshot(ctx, &t, changes, editorID); err != nil {
		return nil, err
	}

	return &t, nil
}

// Delete removes a template and its version history.
func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.templates.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	if _, err := r.versions.DeleteMany(ctx, bson.M{"templateId": id}); err != nil {
		return fmt.Errorf("failed to delete template versions: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter.
func (r *Repository) IncrementViews(ctx context.Context, id string) error {
	return r.adjustCounter(ctx, id, "viewCount", 1)
}

// AdjustStars moves the star counter by delta (negative to remove a star).
func (r *Repository) AdjustStars(ctx context.Context, id string, delta int64) error {
	return r.adjustCounter(ctx, id, "starCount", delta)
}

// AdjustBookmarks moves the bookmark counter by delta.
func (r *Repository) AdjustBookmarks(ctx context.Context, id string, delta int64) error {
	return r.adjustCounter(ctx, id, "bookmarkCount", delta)
}

// ListVersions returns a template's snapshots, newest first.
func (r *Repository) ListVersions(ctx context.Context, templateID string) ([]Version, error) {
	cursor, err := r.versions.Find(ctx,
		bson.M{"templateId": templateID},
		options.Find().SetSort(bson.D{{Key: "version", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list template versions: %w", err)
	}

	versions := []Version{}
	if err := cursor.All(ctx, &versions); err != nil {
		return nil, fmt.Errorf("failed to decode template versions: %w", err)
	}
	return versions, nil
}

func (r *Repository) adjustCounter(ctx context.Context, id, field string, delta int64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.templates.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{field: delta}},
	)
	if err != nil {
		return fmt.Errorf("failed to adjust %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) insertSnapshot(ctx context.Context, t *Template, changes, createdBy string) error {
	snapshot := Version{
		TemplateID:  t.ID.Hex(),
		Version:     t.Version,
		Title:       t.Title,
		Description: t.Description,
		Content:     t.Content,
		Changes:     changes,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}
	if _, err := r.versions.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert version snapshot: %w", err)
	}
	return nil
}
