package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/chayanitb/task-tracker-api/internal/repository"
	"github.com/chayanitb/task-tracker-api/internal/security"
)

// PasswordResetUsecase defines the business logic for the OTP-based
// password-reset flow.
type PasswordResetUsecase interface {
	// ForgotPassword generates a one-time code for the account, persists it
	// with its expiry and mails it to the user.
	ForgotPassword(ctx context.Context, email string) error

	// VerifyOTP checks that the code matches and has not expired. It does
	// not consume the code; it can be called repeatedly before the reset.
	VerifyOTP(ctx context.Context, email, otp string) error

	// ResetPassword replaces the password and clears the one-time code.
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

// OTPSender delivers a password-reset code to a destination address.
type OTPSender interface {
	SendPasswordResetOTP(to, code string) error
}

var (
	ErrInvalidOTP  = errors.New("invalid or expired OTP")
	ErrOTPDelivery = errors.New("failed to send OTP email")
)

const otpTTL = 10 * time.Minute

type passwordResetUsecase struct {
	userRepo repository.UserRepository
	sender   OTPSender
	now      func() time.Time
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(userRepo repository.UserRepository, sender OTPSender) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo: userRepo,
		sender:   sender,
		now:      time.Now,
	}
}

func (u *passwordResetUsecase) ForgotPassword(ctx context.Context, email string) error {
	// Unlike signup and login, this lookup ignores email case.
	user, err := u.userRepo.GetUserByEmailInsensitive(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}

		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		ResetOTP: &repository.ResetOTP{
			Code:      otp,
			ExpiresAt: u.now().Add(otpTTL),
		},
	}); err != nil {
		return err
	}

	// The code stays stored on delivery failure: a retry resends a fresh
	// one, and a code that did reach the user can still be verified.
	if err := u.sender.SendPasswordResetOTP(user.Email, otp); err != nil {
		return ErrOTPDelivery
	}

	return nil
}

func (u *passwordResetUsecase) VerifyOTP(ctx context.Context, email, otp string) error {
	if _, err := u.userRepo.GetUserByEmailAndOTP(ctx, email, otp, u.now()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidOTP
		}

		return err
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	user, err := u.userRepo.GetUserByEmailAndOTP(ctx, email, otp, u.now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidOTP
		}

		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		PasswordHash:  &passwordHash,
		ClearResetOTP: true,
	}); err != nil {
		return err
	}

	return nil
}

// generateOTP returns a 6-digit numeric code, uniform over 100000-999999.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(100000+n.Int64(), 10), nil
}
