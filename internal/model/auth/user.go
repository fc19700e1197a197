package auth

import (
	"time"
)

// User is the identity record. The ID is a UUID string reused as the key of
// every per-user document (conversation, stats, profile mirror, admin marker).
type User struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Email       string     `bson:"email" json:"email"`
	Name        string     `bson:"name" json:"name"`
	Password    string     `bson:"password" json:"-"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}
