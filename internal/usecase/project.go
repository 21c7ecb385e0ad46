package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chayanitb/task-tracker-api/internal/model"
	"github.com/chayanitb/task-tracker-api/internal/repository"
)

// ProjectUsecase defines the business logic for project CRUD. Every
// operation is scoped to the requesting owner.
type ProjectUsecase interface {
	CreateProject(ctx context.Context, userID bson.ObjectID, name, description string) (*model.Project, error)
	GetProject(ctx context.Context, userID bson.ObjectID, id string) (*model.Project, error)
	ListProjects(ctx context.Context, userID bson.ObjectID) ([]*model.Project, error)
	UpdateProject(ctx context.Context, userID bson.ObjectID, id string, params UpdateProjectParams) (*model.Project, error)

	// DeleteProject removes the project and every task referencing it. The
	// two deletes are sequential, not atomic: a crash in between can leave
	// tasks pointing at a deleted project.
	DeleteProject(ctx context.Context, userID bson.ObjectID, id string) error
}

// UpdateProjectParams defines the parameters for a partial project update.
type UpdateProjectParams struct {
	Name        *string
	Description *string
}

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectNameTaken    = errors.New("project name already exists")
	ErrProjectLimitReached = errors.New("you have reached the maximum limit of 4 projects")
)

const maxProjectsPerUser = 4

type projectUsecase struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

// NewProjectUsecase creates a new instance of ProjectUsecase.
func NewProjectUsecase(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) ProjectUsecase {
	return &projectUsecase{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

func (u *projectUsecase) CreateProject(
	ctx context.Context,
	userID bson.ObjectID,
	name, description string,
) (*model.Project, error) {
	count, err := u.projectRepo.CountProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= maxProjectsPerUser {
		return nil, ErrProjectLimitReached
	}

	project, err := u.projectRepo.CreateProject(ctx, &model.Project{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrProjectNameTaken
		}

		return nil, err
	}

	return project, nil
}

func (u *projectUsecase) GetProject(ctx context.Context, userID bson.ObjectID, id string) (*model.Project, error) {
	project, err := u.projectRepo.GetProject(ctx, id, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}

		return nil, err
	}

	return project, nil
}

func (u *projectUsecase) ListProjects(ctx context.Context, userID bson.ObjectID) ([]*model.Project, error) {
	return u.projectRepo.ListProjects(ctx, userID)
}

func (u *projectUsecase) UpdateProject(
	ctx context.Context,
	userID bson.ObjectID,
	id string,
	params UpdateProjectParams,
) (*model.Project, error) {
	updateParams := repository.UpdateProjectParams{}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		updateParams.Name = &name
	}
	if params.Description != nil {
		description := strings.TrimSpace(*params.Description)
		updateParams.Description = &description
	}

	if updateParams.Name == nil && updateParams.Description == nil {
		return u.GetProject(ctx, userID, id)
	}

	project, err := u.projectRepo.UpdateProject(ctx, id, userID, updateParams)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrProjectNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrProjectNameTaken
		}

		return nil, err
	}

	return project, nil
}

func (u *projectUsecase) DeleteProject(ctx context.Context, userID bson.ObjectID, id string) error {
	project, err := u.GetProject(ctx, userID, id)
	if err != nil {
		return err
	}

	// Tasks first, then the project.
	if _, err := u.taskRepo.DeleteTasksByProject(ctx, project.ID, userID); err != nil {
		return err
	}

	if err := u.projectRepo.DeleteProject(ctx, id, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrProjectNotFound
		}

		return err
	}

	return nil
}
