package usecase

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/chayanitb/task-tracker-api/internal/model"
	"github.com/chayanitb/task-tracker-api/internal/repository"
)

// ActivitySummary holds the per-user resource counts shown on the dashboard.
type ActivitySummary struct {
	ProjectsCount       int64 `json:"projectsCount"`
	TasksCount          int64 `json:"tasksCount"`
	CompletedTasksCount int64 `json:"completedTasksCount"`
}

// ActivityUsecase reports aggregate counts for a user.
type ActivityUsecase interface {
	Summary(ctx context.Context, userID bson.ObjectID) (*ActivitySummary, error)
}

type activityUsecase struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

// NewActivityUsecase creates a new instance of ActivityUsecase.
func NewActivityUsecase(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) ActivityUsecase {
	return &activityUsecase{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

func (u *activityUsecase) Summary(ctx context.Context, userID bson.ObjectID) (*ActivitySummary, error) {
	projects, err := u.projectRepo.CountProjects(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := u.taskRepo.CountTasks(ctx, userID, repository.FilterTasksParams{})
	if err != nil {
		return nil, err
	}

	completed := model.TaskStatusCompleted
	completedTasks, err := u.taskRepo.CountTasks(ctx, userID, repository.FilterTasksParams{Status: &completed})
	if err != nil {
		return nil, err
	}

	return &ActivitySummary{
		ProjectsCount:       projects,
		TasksCount:          tasks,
		CompletedTasksCount: completedTasks,
	}, nil
}
