// Package repotest provides in-memory repository implementations for tests.
// They mirror the Mongo repositories' error semantics: mongo.ErrNoDocuments
// for missing records and a duplicate-key write exception for unique-index
// violations.
package repotest

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chayanitb/task-tracker-api/internal/model"
	"github.com/chayanitb/task-tracker-api/internal/repository"
)

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

// UserRepo is an in-memory repository.UserRepository keyed by hex ID.
type UserRepo struct {
	Users map[string]*model.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{Users: make(map[string]*model.User)}
}

func (f *UserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	for _, u := range f.Users {
		if u.Email == user.Email {
			return nil, duplicateKeyError()
		}
	}

	user.ID = bson.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	f.Users[user.ID.Hex()] = &stored

	return user, nil
}

func (f *UserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	user, ok := f.Users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	copied := *user
	return &copied, nil
}

func (f *UserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.Users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *UserRepo) GetUserByEmailInsensitive(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.Users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *UserRepo) GetUserByEmailAndOTP(
	_ context.Context,
	email, otp string,
	now time.Time,
) (*model.User, error) {
	for _, u := range f.Users {
		if u.Email == email && u.ResetOTP != "" && u.ResetOTP == otp && u.ResetOTPExpiresAt.After(now) {
			copied := *u
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *UserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	user, ok := f.Users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Country != nil {
		user.Country = *params.Country
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.ResetOTP != nil {
		user.ResetOTP = params.ResetOTP.Code
		user.ResetOTPExpiresAt = params.ResetOTP.ExpiresAt
	}
	if params.ClearResetOTP {
		user.ResetOTP = ""
		user.ResetOTPExpiresAt = time.Time{}
	}
	user.UpdatedAt = time.Now()

	copied := *user
	return &copied, nil
}

// ProjectRepo is an in-memory repository.ProjectRepository keyed by hex ID.
type ProjectRepo struct {
	Projects map[string]*model.Project
}

func NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{Projects: make(map[string]*model.Project)}
}

func (f *ProjectRepo) CreateProject(_ context.Context, project *model.Project) (*model.Project, error) {
	for _, p := range f.Projects {
		if p.UserID == project.UserID && p.Name == project.Name {
			return nil, duplicateKeyError()
		}
	}

	project.ID = bson.NewObjectID()
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	stored := *project
	f.Projects[project.ID.Hex()] = &stored

	return project, nil
}

func (f *ProjectRepo) GetProject(_ context.Context, id string, userID bson.ObjectID) (*model.Project, error) {
	project, ok := f.Projects[id]
	if !ok || project.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}

	copied := *project
	return &copied, nil
}

func (f *ProjectRepo) ListProjects(_ context.Context, userID bson.ObjectID) ([]*model.Project, error) {
	var projects []*model.Project
	for _, p := range f.Projects {
		if p.UserID == userID {
			copied := *p
			projects = append(projects, &copied)
		}
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	return projects, nil
}

func (f *ProjectRepo) CountProjects(_ context.Context, userID bson.ObjectID) (int64, error) {
	var count int64
	for _, p := range f.Projects {
		if p.UserID == userID {
			count++
		}
	}

	return count, nil
}

func (f *ProjectRepo) UpdateProject(
	_ context.Context,
	id string,
	userID bson.ObjectID,
	params repository.UpdateProjectParams,
) (*model.Project, error) {
	project, ok := f.Projects[id]
	if !ok || project.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		for _, p := range f.Projects {
			if p.ID != project.ID && p.UserID == userID && p.Name == *params.Name {
				return nil, duplicateKeyError()
			}
		}
		project.Name = *params.Name
	}
	if params.Description != nil {
		project.Description = *params.Description
	}
	project.UpdatedAt = time.Now()

	copied := *project
	return &copied, nil
}

func (f *ProjectRepo) DeleteProject(_ context.Context, id string, userID bson.ObjectID) error {
	project, ok := f.Projects[id]
	if !ok || project.UserID != userID {
		return mongo.ErrNoDocuments
	}

	delete(f.Projects, id)
	return nil
}

// TaskRepo is an in-memory repository.TaskRepository keyed by hex ID.
type TaskRepo struct {
	Tasks map[string]*model.Task
}

func NewTaskRepo() *TaskRepo {
	return &TaskRepo{Tasks: make(map[string]*model.Task)}
}

func (f *TaskRepo) CreateTask(_ context.Context, task *model.Task) (*model.Task, error) {
	task.ID = bson.NewObjectID()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	stored := *task
	f.Tasks[task.ID.Hex()] = &stored

	return task, nil
}

func (f *TaskRepo) GetTask(_ context.Context, id string, userID bson.ObjectID) (*model.Task, error) {
	task, ok := f.Tasks[id]
	if !ok || task.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}

	copied := *task
	return &copied, nil
}

func (f *TaskRepo) ListTasks(
	_ context.Context,
	userID bson.ObjectID,
	params repository.FilterTasksParams,
) ([]*model.Task, error) {
	var tasks []*model.Task
	for _, t := range f.Tasks {
		if taskMatches(t, userID, params) {
			copied := *t
			tasks = append(tasks, &copied)
		}
	}

	return tasks, nil
}

func (f *TaskRepo) CountTasks(
	_ context.Context,
	userID bson.ObjectID,
	params repository.FilterTasksParams,
) (int64, error) {
	var count int64
	for _, t := range f.Tasks {
		if taskMatches(t, userID, params) {
			count++
		}
	}

	return count, nil
}

func (f *TaskRepo) UpdateTask(
	_ context.Context,
	id string,
	userID bson.ObjectID,
	params repository.UpdateTaskParams,
) (*model.Task, error) {
	task, ok := f.Tasks[id]
	if !ok || task.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.ProjectID != nil {
		task.ProjectID = *params.ProjectID
	}
	if params.CompletedAt != nil {
		completedAt := *params.CompletedAt
		task.CompletedAt = &completedAt
	}
	if params.ClearCompletedAt {
		task.CompletedAt = nil
	}
	task.UpdatedAt = time.Now()

	copied := *task
	return &copied, nil
}

func (f *TaskRepo) DeleteTask(_ context.Context, id string, userID bson.ObjectID) error {
	task, ok := f.Tasks[id]
	if !ok || task.UserID != userID {
		return mongo.ErrNoDocuments
	}

	delete(f.Tasks, id)
	return nil
}

func (f *TaskRepo) DeleteTasksByProject(_ context.Context, projectID, userID bson.ObjectID) (int64, error) {
	var deleted int64
	for id, t := range f.Tasks {
		if t.ProjectID == projectID && t.UserID == userID {
			delete(f.Tasks, id)
			deleted++
		}
	}

	return deleted, nil
}

func taskMatches(t *model.Task, userID bson.ObjectID, params repository.FilterTasksParams) bool {
	if t.UserID != userID {
		return false
	}
	if params.ProjectID != nil && t.ProjectID != *params.ProjectID {
		return false
	}
	if params.Status != nil && t.Status != *params.Status {
		return false
	}

	return true
}
