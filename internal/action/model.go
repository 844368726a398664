package action

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Type enumerates the supported user actions.
type Type string

const (
	TypeStar     Type = "star"
	TypeBookmark Type = "bookmark"
	TypeFollow   Type = "follow"
)

// Valid reports whether t is a known action type.
func (t Type) Valid() bool {
	switch t {
	case TypeStar, TypeBookmark, TypeFollow:
		return true
	}
	return false
}

// UserAction records that a user starred/bookmarked a template or followed
// another user. At most one action exists per (user, target, type).
type UserAction struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"userId" json:"userId"`
	TargetID   string             `bson:"targetId" json:"targetId"` // template ID or user ID
	ActionType Type               `bson:"actionType" json:"actionType"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
