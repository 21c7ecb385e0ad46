package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chayanitb/task-tracker-api/internal/model"
	"github.com/chayanitb/task-tracker-api/internal/repository"
)

// TaskUsecase defines the business logic for task CRUD. Every operation is
// scoped to the requesting owner, and any project reference is verified to
// belong to the same owner.
type TaskUsecase interface {
	CreateTask(ctx context.Context, userID bson.ObjectID, params CreateTaskParams) (*model.Task, error)
	GetTask(ctx context.Context, userID bson.ObjectID, id string) (*model.Task, error)
	ListTasks(ctx context.Context, userID bson.ObjectID, projectID *string) ([]*model.Task, error)
	UpdateTask(ctx context.Context, userID bson.ObjectID, id string, params UpdateTaskParams) (*model.Task, error)
	DeleteTask(ctx context.Context, userID bson.ObjectID, id string) error
}

// CreateTaskParams defines the parameters for creating a task.
type CreateTaskParams struct {
	ProjectID   string
	Title       string
	Description string
	Status      string
	Priority    string
}

// UpdateTaskParams defines the parameters for a partial task update.
type UpdateTaskParams struct {
	ProjectID   *string
	Title       *string
	Description *string
	Status      *string
	Priority    *string
}

var ErrTaskNotFound = errors.New("task not found")

type taskUsecase struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	now         func() time.Time
}

// NewTaskUsecase creates a new instance of TaskUsecase.
func NewTaskUsecase(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) TaskUsecase {
	return &taskUsecase{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		now:         time.Now,
	}
}

func (u *taskUsecase) CreateTask(
	ctx context.Context,
	userID bson.ObjectID,
	params CreateTaskParams,
) (*model.Task, error) {
	project, err := u.ownedProject(ctx, userID, params.ProjectID)
	if err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	priority := params.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}

	task := &model.Task{
		UserID:      userID,
		ProjectID:   project.ID,
		Title:       params.Title,
		Description: params.Description,
		Status:      status,
		Priority:    priority,
	}
	if status == model.TaskStatusCompleted {
		now := u.now()
		task.CompletedAt = &now
	}

	return u.taskRepo.CreateTask(ctx, task)
}

func (u *taskUsecase) GetTask(ctx context.Context, userID bson.ObjectID, id string) (*model.Task, error) {
	task, err := u.taskRepo.GetTask(ctx, id, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}

		return nil, err
	}

	return task, nil
}

func (u *taskUsecase) ListTasks(
	ctx context.Context,
	userID bson.ObjectID,
	projectID *string,
) ([]*model.Task, error) {
	filter := repository.FilterTasksParams{}
	if projectID != nil {
		project, err := u.ownedProject(ctx, userID, *projectID)
		if err != nil {
			return nil, err
		}
		filter.ProjectID = &project.ID
	}

	return u.taskRepo.ListTasks(ctx, userID, filter)
}

func (u *taskUsecase) UpdateTask(
	ctx context.Context,
	userID bson.ObjectID,
	id string,
	params UpdateTaskParams,
) (*model.Task, error) {
	task, err := u.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updateParams := repository.UpdateTaskParams{
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
	}

	// Re-parenting a task requires the new project to belong to the same
	// owner.
	if params.ProjectID != nil && *params.ProjectID != task.ProjectID.Hex() {
		project, err := u.ownedProject(ctx, userID, *params.ProjectID)
		if err != nil {
			return nil, err
		}
		updateParams.ProjectID = &project.ID
	}

	if params.Status != nil {
		switch {
		case *params.Status == model.TaskStatusCompleted && task.Status != model.TaskStatusCompleted:
			now := u.now()
			updateParams.CompletedAt = &now
		case *params.Status != model.TaskStatusCompleted:
			updateParams.ClearCompletedAt = true
		}
	}

	updated, err := u.taskRepo.UpdateTask(ctx, id, userID, updateParams)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}

		return nil, err
	}

	return updated, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID bson.ObjectID, id string) error {
	if err := u.taskRepo.DeleteTask(ctx, id, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}

		return err
	}

	return nil
}

func (u *taskUsecase) ownedProject(
	ctx context.Context,
	userID bson.ObjectID,
	projectID string,
) (*model.Project, error) {
	project, err := u.projectRepo.GetProject(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProjectNotFound
		}

		return nil, err
	}

	return project, nil
}
