package template

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template is a structured design document with versioning and engagement
// counters.
type Template struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Content       string             `bson:"content" json:"content"` // rich text, HTML or JSON
	Category      string             `bson:"category" json:"category"`
	Tags          []string           `bson:"tags" json:"tags"`
	AuthorID      string             `bson:"authorId" json:"authorId"`
	AuthorName    string             `bson:"authorName" json:"authorName"`
	Version       int                `bson:"version" json:"version"`
	IsPublic      bool               `bson:"isPublic" json:"isPublic"`
	ViewCount     int64              `bson:"viewCount" json:"viewCount"`
	StarCount     int64              `bson:"starCount" json:"starCount"`
	BookmarkCount int64              `bson:"bookmarkCount" json:"bookmarkCount"`
	ThumbnailURL  string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Version is an immutable snapshot taken on every template update.
type Version struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID  string             `bson:"templateId" json:"templateId"`
	Version     int                `bson:"version" json:"version"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Content     string             `bson:"content" json:"content"`
	Changes     string             `bson:"changes" json:"changes"`
	CreatedBy   string             `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Filter narrows template listings. Nil/empty fields are ignored.
type Filter struct {
	Category string
	Search   string
	AuthorID string
	IsPublic *bool
}

// Update carries the mutable template fields for a PUT. Nil pointers leave
// the stored value untouched.
type Update struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Content      *string   `json:"content"`
	Category     *string   `json:"category"`
	Tags         *[]string `json:"tags"`
	IsPublic     *bool     `json:"isPublic"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	Changes      string    `json:"changes"`
}
