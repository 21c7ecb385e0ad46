package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account holder. The password hash and the transient
// reset-OTP state are persisted but never serialized into API responses.
type User struct {
	ID                bson.ObjectID `bson:"_id,omitempty"              json:"id"`
	Name              string        `bson:"name"                       json:"name"`
	Email             string        `bson:"email"                      json:"email"`
	PasswordHash      string        `bson:"password_hash"              json:"-"`
	Country           string        `bson:"country"                    json:"country"`
	ResetOTP          string        `bson:"reset_otp,omitempty"        json:"-"`
	ResetOTPExpiresAt time.Time     `bson:"reset_otp_expires_at,omitempty" json:"-"`
	CreatedAt         time.Time     `bson:"created_at"                 json:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"                 json:"updated_at"`
}
