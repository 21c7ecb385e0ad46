package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/chayanitb/task-tracker-api/internal/config"
	"github.com/chayanitb/task-tracker-api/internal/middleware"
	"github.com/chayanitb/task-tracker-api/internal/usecase"
)

// AuthHandler serves the authentication and profile endpoints.
type AuthHandler struct {
	authUsecase     usecase.AuthUsecase
	resetUsecase    usecase.PasswordResetUsecase
	activityUsecase usecase.ActivityUsecase
	validator       *requestValidator
	cfg             *config.Config
	logger          *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	resetUsecase usecase.PasswordResetUsecase,
	activityUsecase usecase.ActivityUsecase,
	cfg *config.Config,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:     authUsecase,
		resetUsecase:    resetUsecase,
		activityUsecase: activityUsecase,
		validator:       newRequestValidator(),
		cfg:             cfg,
		logger:          logger,
	}
}

type signUpRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Country  string `json:"country"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.authUsecase.SignUp(r.Context(), usecase.SignUpParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Country:  req.Country,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrUserAlreadyExists) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}

		h.serverError(w, err, "signup failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.authUsecase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			writeMessage(w, http.StatusBadRequest, "Invalid credentials")
			return
		}

		h.serverError(w, err, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.resetUsecase.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, usecase.ErrOTPDelivery):
			writeMessage(w, http.StatusInternalServerError, "Failed to send OTP email")
		default:
			h.serverError(w, err, "forgot password failed")
		}
		return
	}

	writeMessage(w, http.StatusOK, "OTP sent successfully")
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp"   validate:"required"`
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.resetUsecase.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, usecase.ErrInvalidOTP) {
			writeMessage(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}

		h.serverError(w, err, "verify OTP failed")
		return
	}

	writeMessage(w, http.StatusOK, "OTP verified successfully")
}

type resetPasswordRequest struct {
	Email       string `json:"email"       validate:"required"`
	OTP         string `json:"otp"         validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.resetUsecase.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, usecase.ErrInvalidOTP) {
			writeMessage(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}

		h.serverError(w, err, "reset password failed")
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successful")
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req updateProfileRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.authUsecase.UpdateProfile(r.Context(), user.ID.Hex(), usecase.UpdateProfileParams{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "User not found")
		case errors.Is(err, usecase.ErrCurrentPasswordRequired):
			writeMessage(w, http.StatusBadRequest, "Current password is required")
		case errors.Is(err, usecase.ErrCurrentPasswordIncorrect):
			writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
		default:
			h.serverError(w, err, "update profile failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *AuthHandler) ActivitySummary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	summary, err := h.activityUsecase.Summary(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, err, "activity summary failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *AuthHandler) serverError(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)

	message := "Something went wrong!"
	if !h.cfg.IsProduction() {
		message = err.Error()
	}

	writeMessage(w, http.StatusInternalServerError, message)
}
