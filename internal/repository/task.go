package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/chayanitb/task-tracker-api/internal/model"
)

// TaskRepository defines the interface for task-related database operations.
// Every lookup and mutation is scoped to the owning user.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) (*model.Task, error)
	GetTask(ctx context.Context, id string, userID bson.ObjectID) (*model.Task, error)
	ListTasks(ctx context.Context, userID bson.ObjectID, params FilterTasksParams) ([]*model.Task, error)
	CountTasks(ctx context.Context, userID bson.ObjectID, params FilterTasksParams) (int64, error)
	UpdateTask(ctx context.Context, id string, userID bson.ObjectID, params UpdateTaskParams) (*model.Task, error)
	DeleteTask(ctx context.Context, id string, userID bson.ObjectID) error

	// DeleteTasksByProject removes every task of the given project owned by
	// the user and returns the number of removed tasks.
	DeleteTasksByProject(ctx context.Context, projectID, userID bson.ObjectID) (int64, error)
}

// FilterTasksParams defines the parameters for filtering task queries.
type FilterTasksParams struct {
	ProjectID *bson.ObjectID
	Status    *string
}

// UpdateTaskParams defines the optional parameters for updating a task.
// Only the fields that are not nil will be updated. ClearCompletedAt removes
// the completion timestamp in the same update.
type UpdateTaskParams struct {
	Title            *string
	Description      *string
	Status           *string
	Priority         *string
	ProjectID        *bson.ObjectID
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

const taskCollection = "tasks"

type taskMongoRepository struct {
	db *mongo.Database
}

func NewTaskMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) TaskRepository {
	collection := db.Collection(taskCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "project_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create task indexes")
	}

	return &taskMongoRepository{db: db}
}

func (r *taskMongoRepository) CreateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	result, err := r.db.Collection(taskCollection).InsertOne(ctx, task)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		task.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return task, nil
}

func (r *taskMongoRepository) GetTask(ctx context.Context, id string, userID bson.ObjectID) (*model.Task, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	result := r.db.Collection(taskCollection).FindOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) ListTasks(
	ctx context.Context,
	userID bson.ObjectID,
	params FilterTasksParams,
) ([]*model.Task, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(taskCollection).Find(ctx, taskFilter(userID, params), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*model.Task
	for cursor.Next(ctx) {
		var task model.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskMongoRepository) CountTasks(
	ctx context.Context,
	userID bson.ObjectID,
	params FilterTasksParams,
) (int64, error) {
	return r.db.Collection(taskCollection).CountDocuments(ctx, taskFilter(userID, params))
}

func (r *taskMongoRepository) UpdateTask(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	params UpdateTaskParams,
) (*model.Task, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	// Build update query
	setMap := bson.M{}
	if params.Title != nil {
		setMap["title"] = *params.Title
	}
	if params.Description != nil {
		setMap["description"] = *params.Description
	}
	if params.Status != nil {
		setMap["status"] = *params.Status
	}
	if params.Priority != nil {
		setMap["priority"] = *params.Priority
	}
	if params.ProjectID != nil {
		setMap["project_id"] = *params.ProjectID
	}
	if params.CompletedAt != nil {
		setMap["completed_at"] = *params.CompletedAt
	}

	if len(setMap) == 0 && !params.ClearCompletedAt {
		return nil, errors.New("no task fields to update")
	}

	setMap["updated_at"] = time.Now()

	update := bson.M{"$set": setMap}
	if params.ClearCompletedAt {
		update["$unset"] = bson.M{"completed_at": ""}
	}

	result := r.db.Collection(taskCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "user_id": userID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) DeleteTask(ctx context.Context, id string, userID bson.ObjectID) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result := r.db.Collection(taskCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID, "user_id": userID})

	return result.Err()
}

func (r *taskMongoRepository) DeleteTasksByProject(
	ctx context.Context,
	projectID, userID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(taskCollection).DeleteMany(ctx, bson.M{
		"project_id": projectID,
		"user_id":    userID,
	})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func taskFilter(userID bson.ObjectID, params FilterTasksParams) bson.M {
	filter := bson.M{"user_id": userID}
	if params.ProjectID != nil {
		filter["project_id"] = *params.ProjectID
	}
	if params.Status != nil {
		filter["status"] = *params.Status
	}

	return filter
}
