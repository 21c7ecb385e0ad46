package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chayanitb/task-tracker-api/internal/auth"
	"github.com/chayanitb/task-tracker-api/internal/model"
	"github.com/chayanitb/task-tracker-api/internal/repository"
	"github.com/chayanitb/task-tracker-api/internal/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	SignUp(ctx context.Context, params SignUpParams) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*model.User, error)
}

// SignUpParams defines the parameters for user registration.
type SignUpParams struct {
	Name     string
	Email    string
	Password string
	Country  string
}

// UpdateProfileParams defines the parameters for a partial profile update.
// Only the fields that are not nil are applied.
type UpdateProfileParams struct {
	Name            *string
	Email           *string
	CurrentPassword *string
	NewPassword     *string
}

var (
	ErrUserAlreadyExists        = errors.New("user already exists")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUserNotFound             = errors.New("user not found")
	ErrCurrentPasswordRequired  = errors.New("current password is required")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
)

type authUsecase struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenIssuer
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(userRepo repository.UserRepository, tokens *auth.TokenIssuer) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (u *authUsecase) SignUp(ctx context.Context, params SignUpParams) (*model.User, string, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Country:      params.Country,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", ErrUserAlreadyExists
		}

		return nil, "", err
	}

	token, err := u.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (u *authUsecase) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same error whether the user is missing or the password is
			// wrong, so login cannot be used to probe for accounts.
			return nil, "", ErrInvalidCredentials
		}

		return nil, "", err
	}

	if ok, err := security.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, "", err
	} else if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (u *authUsecase) UpdateProfile(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	updateParams := repository.UpdateUserParams{
		Name:  params.Name,
		Email: params.Email,
	}

	if params.NewPassword != nil {
		if params.CurrentPassword == nil {
			return nil, ErrCurrentPasswordRequired
		}

		if ok, err := security.VerifyPassword(*params.CurrentPassword, user.PasswordHash); err != nil {
			return nil, err
		} else if !ok {
			return nil, ErrCurrentPasswordIncorrect
		}

		passwordHash, err := security.HashPassword(*params.NewPassword)
		if err != nil {
			return nil, err
		}
		updateParams.PasswordHash = &passwordHash
	}

	if updateParams.Name == nil && updateParams.Email == nil && updateParams.PasswordHash == nil {
		return user, nil
	}

	updated, err := u.userRepo.UpdateUser(ctx, userID, updateParams)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return updated, nil
}
