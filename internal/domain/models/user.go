// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can sign in to the report.
//
// Role decides what the user may do (see authz). Status "disabled" blocks
// the account without deleting it.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName  string             `bson:"full_name" json:"full_name"`
	LoginID   string             `bson:"login_id" json:"login_id"`
	Role      string             `bson:"role" json:"role"` // superadmin | admin | manager | viewer
	Status    string             `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
