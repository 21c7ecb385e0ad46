package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chayanitb/task-tracker-api/internal/auth"
	"github.com/chayanitb/task-tracker-api/internal/config"
	"github.com/chayanitb/task-tracker-api/internal/middleware"
	"github.com/chayanitb/task-tracker-api/internal/repository/repotest"
	"github.com/chayanitb/task-tracker-api/internal/usecase"
)

// recordingOTPSender captures reset codes instead of sending mail.
type recordingOTPSender struct {
	lastTo   string
	lastCode string
}

func (s *recordingOTPSender) SendPasswordResetOTP(to, code string) error {
	s.lastTo = to
	s.lastCode = code
	return nil
}

type testServer struct {
	router http.Handler
	sender *recordingOTPSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	cfg := &config.Config{}
	cfg.Server.Environment = "development"

	userRepo := repotest.NewUserRepo()
	projectRepo := repotest.NewProjectRepo()
	taskRepo := repotest.NewTaskRepo()

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	sender := &recordingOTPSender{}

	authHandler := NewAuthHandler(
		usecase.NewAuthUsecase(userRepo, tokens),
		usecase.NewPasswordResetUsecase(userRepo, sender),
		usecase.NewActivityUsecase(projectRepo, taskRepo),
		cfg,
		&logger,
	)
	projectHandler := NewProjectHandler(usecase.NewProjectUsecase(projectRepo, taskRepo), cfg, &logger)
	taskHandler := NewTaskHandler(usecase.NewTaskUsecase(taskRepo, projectRepo), cfg, &logger)
	guard := middleware.NewAuth(tokens, userRepo)

	return &testServer{
		router: NewRouter(&logger, authHandler, projectHandler, taskHandler, guard),
		sender: sender,
	}
}

// do performs a request against the router and decodes the JSON body.
func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded),
			"body: %s", rec.Body.String())
	}

	return rec.Code, decoded
}

func (s *testServer) signup(t *testing.T, name, email, password string) string {
	t.Helper()

	code, body := s.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, code)

	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func TestSignUpAndProfileFlow(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Ann",
		"email":    "ann@x.com",
		"password": "pw1",
		"country":  "US",
	})
	require.Equal(t, http.StatusCreated, code)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ann@x.com", user["email"])

	// Credential material never leaves the server.
	require.NotContains(t, user, "password")
	require.NotContains(t, user, "passwordHash")

	token, ok := body["token"].(string)
	require.True(t, ok)

	code, profile := srv.do(t, http.MethodGet, "/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Ann", profile["name"])
	require.Equal(t, "US", profile["country"])
	require.NotContains(t, profile, "password")
}

func TestSignUpDuplicateEmailConflict(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "Ann", "ann@x.com", "pw1")

	code, body := srv.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Other",
		"email":    "ann@x.com",
		"password": "pw2",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "User already exists", body["message"])
}

func TestSignUpValidation(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Ann",
		"password": "pw1",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.NotEmpty(t, body["message"])

	code, _ = srv.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Ann",
		"email":    "not-an-email",
		"password": "pw1",
	})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestLoginFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "Ann", "ann@x.com", "pw1")

	code, body := srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ann@x.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Invalid credentials", body["message"])

	// Unknown account yields the identical response.
	code, body = srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "pw1",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Invalid credentials", body["message"])
}

func TestPasswordResetFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.signup(t, "Ann", "ann@x.com", "pw1")

	code, body := srv.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{
		"email": "ann@x.com",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "OTP sent successfully", body["message"])
	require.Equal(t, "ann@x.com", srv.sender.lastTo)
	require.Len(t, srv.sender.lastCode, 6)

	code, body = srv.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{
		"email": "ann@x.com",
		"otp":   "000000",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Invalid or expired OTP", body["message"])

	code, body = srv.do(t, http.MethodPost, "/auth/verify-otp", "", map[string]string{
		"email": "ann@x.com",
		"otp":   srv.sender.lastCode,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "OTP verified successfully", body["message"])

	code, body = srv.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"email":       "ann@x.com",
		"otp":         srv.sender.lastCode,
		"newPassword": "pw2",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Password reset successful", body["message"])

	code, _ = srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ann@x.com",
		"password": "pw1",
	})
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ann@x.com",
		"password": "pw2",
	})
	require.Equal(t, http.StatusOK, code)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{
		"email": "nobody@x.com",
	})
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "User not found", body["message"])
}

func TestUpdateProfileThroughRouter(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "Ann", "ann@x.com", "pw1")

	code, body := srv.do(t, http.MethodPut, "/auth/profile", token, map[string]string{
		"name": "Ann B.",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Ann B.", body["name"])
	require.Equal(t, "ann@x.com", body["email"])

	code, body = srv.do(t, http.MethodPut, "/auth/profile", token, map[string]string{
		"newPassword": "pw2",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Current password is required", body["message"])
}

func TestGuardRejectionsThroughRouter(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/auth/profile", "/projects/", "/tasks/"} {
		code, body := srv.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, code, path)
		require.Equal(t, "Not authorized", body["message"], path)

		code, body = srv.do(t, http.MethodGet, path, "garbage", nil)
		require.Equal(t, http.StatusUnauthorized, code, path)
		require.Equal(t, "Not authorized", body["message"], path)
	}
}

func TestProjectCRUDFlow(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "Ann", "ann@x.com", "pw1")

	code, body := srv.do(t, http.MethodPost, "/projects/", token, map[string]string{
		"name":        "Home",
		"description": "chores",
	})
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, true, body["success"])

	project, ok := body["project"].(map[string]any)
	require.True(t, ok)
	projectID, ok := project["id"].(string)
	require.True(t, ok)
	require.Equal(t, "Home", project["name"])

	code, body = srv.do(t, http.MethodGet, "/projects/", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["projects"], 1)

	code, body = srv.do(t, http.MethodPut, "/projects/"+projectID, token, map[string]string{
		"name": "Household",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Household", body["project"].(map[string]any)["name"])

	code, body = srv.do(t, http.MethodDelete, "/projects/"+projectID, token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Project and associated tasks deleted successfully", body["message"])

	code, body = srv.do(t, http.MethodGet, "/projects/", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["projects"], 0)
}

func TestProjectLimitAndDuplicateName(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "Ann", "ann@x.com", "pw1")

	code, _ := srv.do(t, http.MethodPost, "/projects/", token, map[string]string{"name": "Home"})
	require.Equal(t, http.StatusCreated, code)

	code, body := srv.do(t, http.MethodPost, "/projects/", token, map[string]string{"name": "Home"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Project name already exists", body["message"])

	for _, name := range []string{"Work", "Gym", "Garden"} {
		code, _ = srv.do(t, http.MethodPost, "/projects/", token, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, code)
	}

	code, body = srv.do(t, http.MethodPost, "/projects/", token, map[string]string{"name": "Overflow"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "You have reached the maximum limit of 4 projects", body["message"])
}

func TestTaskFlowWithFilter(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "Ann", "ann@x.com", "pw1")

	_, body := srv.do(t, http.MethodPost, "/projects/", token, map[string]string{"name": "Home"})
	homeID := body["project"].(map[string]any)["id"].(string)
	_, body = srv.do(t, http.MethodPost, "/projects/", token, map[string]string{"name": "Work"})
	workID := body["project"].(map[string]any)["id"].(string)

	code, body := srv.do(t, http.MethodPost, "/tasks/", token, map[string]string{
		"project": homeID,
		"title":   "buy milk",
	})
	require.Equal(t, http.StatusCreated, code)

	task := body["task"].(map[string]any)
	require.Equal(t, "pending", task["status"])
	require.Equal(t, "medium", task["priority"])
	taskID := task["id"].(string)

	code, _ = srv.do(t, http.MethodPost, "/tasks/", token, map[string]string{
		"project": workID,
		"title":   "file report",
	})
	require.Equal(t, http.StatusCreated, code)

	code, body = srv.do(t, http.MethodGet, "/tasks/", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["tasks"], 2)

	code, body = srv.do(t, http.MethodGet, "/tasks/?project="+homeID, token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["tasks"], 1)

	code, body = srv.do(t, http.MethodPut, "/tasks/"+taskID, token, map[string]string{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, body["task"].(map[string]any)["completed_at"])

	code, body = srv.do(t, http.MethodDelete, "/tasks/"+taskID, token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Task deleted", body["message"])
}

func TestTaskValidation(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "Ann", "ann@x.com", "pw1")

	_, body := srv.do(t, http.MethodPost, "/projects/", token, map[string]string{"name": "Home"})
	projectID := body["project"].(map[string]any)["id"].(string)

	code, body := srv.do(t, http.MethodPost, "/tasks/", token, map[string]string{
		"project": projectID,
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, false, body["success"])

	code, _ = srv.do(t, http.MethodPost, "/tasks/", token, map[string]string{
		"project": projectID,
		"title":   "bad status",
		"status":  "archived",
	})
	require.Equal(t, http.StatusBadRequest, code)
}

func TestOwnershipIsolation(t *testing.T) {
	srv := newTestServer(t)
	annToken := srv.signup(t, "Ann", "ann@x.com", "pw1")
	bobToken := srv.signup(t, "Bob", "bob@x.com", "pw2")

	_, body := srv.do(t, http.MethodPost, "/projects/", annToken, map[string]string{"name": "Secret"})
	projectID := body["project"].(map[string]any)["id"].(string)

	_, body = srv.do(t, http.MethodPost, "/tasks/", annToken, map[string]string{
		"project": projectID,
		"title":   "private task",
	})
	taskID := body["task"].(map[string]any)["id"].(string)

	code, body := srv.do(t, http.MethodGet, "/projects/"+projectID, bobToken, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Project not found", body["message"])

	code, body = srv.do(t, http.MethodGet, "/tasks/"+taskID, bobToken, nil)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Task not found", body["message"])

	code, body = srv.do(t, http.MethodDelete, "/projects/"+projectID, bobToken, nil)
	require.Equal(t, http.StatusNotFound, code)

	// Empty collections serialize as arrays, not null.
	code, body = srv.do(t, http.MethodGet, "/projects/", bobToken, nil)
	require.Equal(t, http.StatusOK, code)
	projects, ok := body["projects"].([]any)
	require.True(t, ok)
	require.Empty(t, projects)
}

func TestActivitySummaryThroughRouter(t *testing.T) {
	srv := newTestServer(t)
	token := srv.signup(t, "Ann", "ann@x.com", "pw1")

	_, body := srv.do(t, http.MethodPost, "/projects/", token, map[string]string{"name": "Home"})
	projectID := body["project"].(map[string]any)["id"].(string)

	for _, status := range []string{"pending", "completed", "completed"} {
		code, _ := srv.do(t, http.MethodPost, "/tasks/", token, map[string]string{
			"project": projectID,
			"title":   "task " + status,
			"status":  status,
		})
		require.Equal(t, http.StatusCreated, code)
	}

	code, body := srv.do(t, http.MethodGet, "/auth/activity-summary", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), body["projectsCount"])
	require.Equal(t, float64(3), body["tasksCount"])
	require.Equal(t, float64(2), body["completedTasksCount"])
}
