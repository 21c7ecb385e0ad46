package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/chayanitb/task-tracker-api/internal/middleware"
)

// NewRouter wires the chi routes and middleware.
func NewRouter(
	logger *zerolog.Logger,
	authHandler *AuthHandler,
	projectHandler *ProjectHandler,
	taskHandler *TaskHandler,
	guard *middleware.Auth,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recover(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireUser)
			r.Get("/profile", authHandler.GetProfile)
			r.Put("/profile", authHandler.UpdateProfile)
			r.Get("/activity-summary", authHandler.ActivitySummary)
		})
	})

	r.Route("/projects", func(r chi.Router) {
		r.Use(guard.RequireUser)
		r.Get("/", projectHandler.List)
		r.Post("/", projectHandler.Create)
		r.Get("/{id}", projectHandler.Get)
		r.Put("/{id}", projectHandler.Update)
		r.Delete("/{id}", projectHandler.Delete)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(guard.RequireUser)
		r.Get("/", taskHandler.List)
		r.Post("/", taskHandler.Create)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return r
}
