package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account. Username is unique (case-sensitive);
// email is optional and only used for password recovery.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	ResetToken   string             `bson:"resetToken,omitempty" json:"-"`
	ResetExpiry  *time.Time         `bson:"resetTokenExpiry,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserRef is the (id, username) pair returned by username search.
type UserRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
}
