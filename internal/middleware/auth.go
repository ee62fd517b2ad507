package middleware

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/familywallet/internal/auth"
	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/rpc"
	"github.com/mmynk/familywallet/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// UsernameKey is the context key for storing the authenticated username.
	UsernameKey contextKey = "username"
	// IsAdminKey is the context key for storing the authenticated user's admin flag.
	IsAdminKey contextKey = "is_admin"
)

// GetUserID extracts the user ID from the context.
// Returns 0 if not found.
func GetUserID(ctx context.Context) int64 {
	userID, _ := ctx.Value(UserIDKey).(int64)
	return userID
}

// GetUsername extracts the username from the context.
// Returns empty string if not found.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// IsAdmin reports whether the authenticated user is an admin.
func IsAdmin(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(IsAdminKey).(bool)
	return isAdmin
}

// WithUser returns a context carrying user as the authenticated caller.
func WithUser(ctx context.Context, user *models.User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.ID)
	ctx = context.WithValue(ctx, UsernameKey, user.Username)
	return context.WithValue(ctx, IsAdminKey, user.IsAdmin)
}

// UserLookup resolves token subjects to current accounts.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, loads the
// account it names, and adds the user to the request context. Tokens of
// deleted accounts are rejected; the admin flag comes from the account, not
// the token.
func RequireAuth(jwtManager *auth.JWTManager, users UserLookup) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, rpc.Error(auth.ErrMissingToken)
			}

			// Parse Bearer token
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return nil, rpc.Error(auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, rpc.Error(err)
			}

			user, err := users.GetUserByID(ctx, claims.UserID)
			if errors.Is(err, storage.ErrNotFound) {
				return nil, rpc.Error(auth.ErrInvalidToken)
			}
			if err != nil {
				return nil, rpc.Error(err)
			}

			return next(WithUser(ctx, user), req)
		}
	}
}

// RequireAdmin rejects callers without the admin flag. It must run inside
// RequireAuth.
func RequireAdmin() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !IsAdmin(ctx) {
				return nil, rpc.Error(auth.ErrForbidden)
			}
			return next(ctx, req)
		}
	}
}
