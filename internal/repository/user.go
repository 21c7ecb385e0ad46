package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/chayanitb/task-tracker-api/internal/model"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// GetUserByEmailInsensitive looks up a user by an anchored,
	// case-insensitive email match. Only the forgot-password flow uses this
	// lookup policy.
	GetUserByEmailInsensitive(ctx context.Context, email string) (*model.User, error)

	// GetUserByEmailAndOTP returns the user matching email, reset_otp and a
	// reset_otp_expires_at strictly after now, in a single query.
	GetUserByEmailAndOTP(ctx context.Context, email, otp string, now time.Time) (*model.User, error)

	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
}

// ResetOTP is a one-time password-reset code with its expiry.
type ResetOTP struct {
	Code      string
	ExpiresAt time.Time
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated. ClearResetOTP removes
// both reset-OTP fields in the same update.
type UpdateUserParams struct {
	Name          *string
	Email         *string
	Country       *string
	PasswordHash  *string
	ResetOTP      *ResetOTP
	ClearResetOTP bool
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUserByEmailInsensitive(ctx context.Context, email string) (*model.User, error) {
	pattern := "^" + regexp.QuoteMeta(email) + "$"

	return r.findOne(ctx, bson.M{"email": bson.Regex{Pattern: pattern, Options: "i"}})
}

func (r *userMongoRepository) GetUserByEmailAndOTP(
	ctx context.Context,
	email, otp string,
	now time.Time,
) (*model.User, error) {
	return r.findOne(ctx, bson.M{
		"email":                email,
		"reset_otp":            otp,
		"reset_otp_expires_at": bson.M{"$gt": now},
	})
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	setMap := bson.M{}
	if params.Name != nil {
		setMap["name"] = *params.Name
	}
	if params.Email != nil {
		setMap["email"] = *params.Email
	}
	if params.Country != nil {
		setMap["country"] = *params.Country
	}
	if params.PasswordHash != nil {
		setMap["password_hash"] = *params.PasswordHash
	}
	if params.ResetOTP != nil {
		setMap["reset_otp"] = params.ResetOTP.Code
		setMap["reset_otp_expires_at"] = params.ResetOTP.ExpiresAt
	}

	if len(setMap) == 0 && !params.ClearResetOTP {
		return nil, errors.New("no user fields to update")
	}

	setMap["updated_at"] = time.Now()

	update := bson.M{"$set": setMap}
	if params.ClearResetOTP {
		update["$unset"] = bson.M{"reset_otp": "", "reset_otp_expires_at": ""}
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
