package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/chayanitb/task-tracker-api/internal/auth"
	"github.com/chayanitb/task-tracker-api/internal/repository/repotest"
	"github.com/chayanitb/task-tracker-api/internal/security"
)

func newTestAuthUsecase(t *testing.T) (AuthUsecase, *repotest.UserRepo, *auth.TokenIssuer) {
	t.Helper()

	userRepo := repotest.NewUserRepo()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	return NewAuthUsecase(userRepo, tokens), userRepo, tokens
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	uc, userRepo, tokens := newTestAuthUsecase(t)

	user, token, err := uc.SignUp(ctx, SignUpParams{
		Name:     "Ann",
		Email:    "ann@x.com",
		Password: "pw1",
		Country:  "US",
	})
	require.NoError(t, err)
	require.False(t, user.ID.IsZero())
	require.Equal(t, "ann@x.com", user.Email)

	// The stored credential is a salted hash, never the plaintext.
	require.NotEqual(t, "pw1", user.PasswordHash)
	ok, err := security.VerifyPassword("pw1", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID.Hex(), userID)

	require.Len(t, userRepo.Users, 1)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestAuthUsecase(t)

	_, _, err := uc.SignUp(ctx, SignUpParams{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, _, err = uc.SignUp(ctx, SignUpParams{Name: "Other", Email: "ann@x.com", Password: "pw2"})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	uc, _, tokens := newTestAuthUsecase(t)

	created, _, err := uc.SignUp(ctx, SignUpParams{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)

	user, token, err := uc.Login(ctx, "ann@x.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, created.ID.Hex(), userID)
}

func TestLoginUniformFailure(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestAuthUsecase(t)

	_, _, err := uc.SignUp(ctx, SignUpParams{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)

	// Wrong password and unknown account fail with the same error.
	_, _, wrongPassword := uc.Login(ctx, "ann@x.com", "nope")
	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)

	_, _, unknownUser := uc.Login(ctx, "nobody@x.com", "pw1")
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)

	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestUpdateProfilePartial(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestAuthUsecase(t)

	user, _, err := uc.SignUp(ctx, SignUpParams{Name: "Ann", Email: "ann@x.com", Password: "pw1", Country: "US"})
	require.NoError(t, err)

	name := "Ann B."
	updated, err := uc.UpdateProfile(ctx, user.ID.Hex(), UpdateProfileParams{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ann B.", updated.Name)

	// Absent fields are untouched, not nulled.
	require.Equal(t, "ann@x.com", updated.Email)
	require.Equal(t, "US", updated.Country)
}

func TestUpdateProfilePassword(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestAuthUsecase(t)

	user, _, err := uc.SignUp(ctx, SignUpParams{Name: "Ann", Email: "ann@x.com", Password: "pw1"})
	require.NoError(t, err)

	newPassword := "pw2"
	_, err = uc.UpdateProfile(ctx, user.ID.Hex(), UpdateProfileParams{NewPassword: &newPassword})
	require.ErrorIs(t, err, ErrCurrentPasswordRequired)

	wrong := "nope"
	_, err = uc.UpdateProfile(ctx, user.ID.Hex(), UpdateProfileParams{
		CurrentPassword: &wrong,
		NewPassword:     &newPassword,
	})
	require.ErrorIs(t, err, ErrCurrentPasswordIncorrect)

	current := "pw1"
	_, err = uc.UpdateProfile(ctx, user.ID.Hex(), UpdateProfileParams{
		CurrentPassword: &current,
		NewPassword:     &newPassword,
	})
	require.NoError(t, err)

	_, _, err = uc.Login(ctx, "ann@x.com", "pw1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = uc.Login(ctx, "ann@x.com", "pw2")
	require.NoError(t, err)
}

func TestUpdateProfileMissingUser(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestAuthUsecase(t)

	name := "ghost"
	_, err := uc.UpdateProfile(ctx, bson.NewObjectID().Hex(), UpdateProfileParams{Name: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}
