package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chayanitb/task-tracker-api/internal/auth"
	"github.com/chayanitb/task-tracker-api/internal/model"
)

// UserSource loads a user record by its ID.
type UserSource interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

type userContextKey struct{}

// The literal prefix, trailing space included. "BearerXYZ" is rejected.
const bearerPrefix = "Bearer "

// Auth gates requests on a bearer token. Every rejection, whatever the
// failing sub-check, yields the same 401 body so the guard leaks nothing
// about why a token was refused.
type Auth struct {
	tokens *auth.TokenIssuer
	users  UserSource
}

// NewAuth creates the bearer-token guard.
func NewAuth(tokens *auth.TokenIssuer, users UserSource) *Auth {
	return &Auth{
		tokens: tokens,
		users:  users,
	}
}

// RequireUser verifies the Authorization header, resolves the token to a
// user and attaches that user to the request context.
func (m *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			unauthorized(w)
			return
		}

		userID, err := m.tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			unauthorized(w)
			return
		}

		// The token may outlive the account.
		user, err := m.users.GetUser(r.Context(), userID)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user attached by RequireUser.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*model.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Not authorized"})
}
