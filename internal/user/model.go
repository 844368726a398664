package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the authorization tier attached to an account.
type Role string

const (
	RoleRead      Role = "read"
	RoleReadWrite Role = "read-write"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleRead, RoleReadWrite, RoleAdmin:
		return true
	}
	return false
}

// Preferences holds per-user settings.
type Preferences struct {
	Theme              string `bson:"theme" json:"theme"`
	EmailNotifications bool   `bson:"emailNotifications" json:"emailNotifications"`
	MarketingEmails    bool   `bson:"marketingEmails" json:"marketingEmails"`
}

// DefaultPreferences are applied to every new account.
func DefaultPreferences() Preferences {
	return Preferences{Theme: "light", EmailNotifications: true}
}

// User is the persisted identity record. The password hash never leaves the
// API in JSON form.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password" json:"-"`
	Role          Role               `bson:"role" json:"role"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	EmailVerified bool               `bson:"emailVerified" json:"emailVerified"`
	AvatarURL     string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Preferences   Preferences        `bson:"preferences" json:"preferences"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	LastLoginAt   *time.Time         `bson:"lastLoginAt" json:"lastLoginAt"`
}
