package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Project represents a user-owned project. Project names are unique per
// owner, enforced by a compound index on (user_id, name).
type Project struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      bson.ObjectID `bson:"user_id"       json:"user_id"`
	Name        string        `bson:"name"          json:"name"`
	Description string        `bson:"description"   json:"description"`
	CreatedAt   time.Time     `bson:"created_at"    json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"    json:"updated_at"`
}
