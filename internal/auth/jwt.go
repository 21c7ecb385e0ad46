package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload carried by a session token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens. Tokens are stateless:
// validity is solely a function of the signature and the embedded expiry,
// there is no revocation.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer signing with the given secret and
// issuing tokens valid for ttl.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the given user ID.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(i.secret)
}

// Verify validates a token string and returns the user ID it carries. It
// fails with ErrTokenInvalid on a bad signature or malformed payload and
// ErrTokenExpired when the embedded expiry has passed. The expiry is checked
// again after parsing even though the parser already enforces it.
func (i *TokenIssuer) Verify(tokenStr string) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return i.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	if claims.ExpiresAt == nil || !i.now().Before(claims.ExpiresAt.Time) {
		return "", ErrTokenExpired
	}

	if claims.UserID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}
