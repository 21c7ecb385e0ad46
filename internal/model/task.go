package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Task statuses.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// Task priorities.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task represents a unit of work inside a project. CompletedAt is set when
// the status transitions to completed and cleared when it leaves completed.
type Task struct {
	ID          bson.ObjectID `bson:"_id,omitempty"          json:"id"`
	UserID      bson.ObjectID `bson:"user_id"                json:"user_id"`
	ProjectID   bson.ObjectID `bson:"project_id"             json:"project_id"`
	Title       string        `bson:"title"                  json:"title"`
	Description string        `bson:"description"            json:"description"`
	Status      string        `bson:"status"                 json:"status"`
	Priority    string        `bson:"priority"               json:"priority"`
	CompletedAt *time.Time    `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt   time.Time     `bson:"created_at"             json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"             json:"updated_at"`
}
