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

// ProjectRepository defines the interface for project-related database
// operations. Every lookup and mutation is scoped to the owning user.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) (*model.Project, error)
	GetProject(ctx context.Context, id string, userID bson.ObjectID) (*model.Project, error)
	ListProjects(ctx context.Context, userID bson.ObjectID) ([]*model.Project, error)
	CountProjects(ctx context.Context, userID bson.ObjectID) (int64, error)
	UpdateProject(ctx context.Context, id string, userID bson.ObjectID, params UpdateProjectParams) (*model.Project, error)
	DeleteProject(ctx context.Context, id string, userID bson.ObjectID) error
}

// UpdateProjectParams defines the optional parameters for updating a project.
// Only the fields that are not nil will be updated.
type UpdateProjectParams struct {
	Name        *string
	Description *string
}

const projectCollection = "projects"

type projectMongoRepository struct {
	db *mongo.Database
}

func NewProjectMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ProjectRepository {
	collection := db.Collection(projectCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create project indexes")
	}

	return &projectMongoRepository{db: db}
}

func (r *projectMongoRepository) CreateProject(ctx context.Context, project *model.Project) (*model.Project, error) {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	result, err := r.db.Collection(projectCollection).InsertOne(ctx, project)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		project.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return project, nil
}

func (r *projectMongoRepository) GetProject(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
) (*model.Project, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	result := r.db.Collection(projectCollection).FindOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var project model.Project
	if err := result.Decode(&project); err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *projectMongoRepository) ListProjects(ctx context.Context, userID bson.ObjectID) ([]*model.Project, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(projectCollection).Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var projects []*model.Project
	for cursor.Next(ctx) {
		var project model.Project
		if err := cursor.Decode(&project); err != nil {
			return nil, err
		}
		projects = append(projects, &project)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectMongoRepository) CountProjects(ctx context.Context, userID bson.ObjectID) (int64, error) {
	return r.db.Collection(projectCollection).CountDocuments(ctx, bson.M{"user_id": userID})
}

func (r *projectMongoRepository) UpdateProject(
	ctx context.Context,
	id string,
	userID bson.ObjectID,
	params UpdateProjectParams,
) (*model.Project, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	// Build update query
	updateMap := bson.M{}
	if params.Name != nil {
		updateMap["name"] = *params.Name
	}
	if params.Description != nil {
		updateMap["description"] = *params.Description
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no project fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(projectCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "user_id": userID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var project model.Project
	if err := result.Decode(&project); err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *projectMongoRepository) DeleteProject(ctx context.Context, id string, userID bson.ObjectID) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result := r.db.Collection(projectCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID, "user_id": userID})

	return result.Err()
}
