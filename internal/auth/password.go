package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/familywallet/internal/models"
	"github.com/mmynk/familywallet/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrForbidden          = errors.New("admin privileges required")
)

const (
	minPasswordLength = 8

	generatedPasswordLength = 8
	passwordAlphabet        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	admins  []string
}

// NewPasswordAuthenticator creates a new password-based authenticator.
// Usernames listed in admins are granted the admin role.
func NewPasswordAuthenticator(storage UserStorage, admins []string) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		admins:  admins,
	}
}

// IsAdminUsername reports whether username is on the configured admin list.
func (a *PasswordAuthenticator) IsAdminUsername(username string) bool {
	return slices.Contains(a.admins, username)
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, credential string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || credential == "" {
		return nil, ErrMissingCredentials
	}

	// Validate password strength
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(username, string(hashedPassword), a.IsAdminUsername(username))

	// The unique index on username decides races between two registrations.
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user if valid.
// The admin flag is brought in line with the configured admin list.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || credential == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Compare password hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if isAdmin := a.IsAdminUsername(user.Username); isAdmin != user.IsAdmin {
		if err := a.storage.SetAdmin(ctx, user.ID, isAdmin); err != nil {
			return nil, fmt.Errorf("failed to sync admin flag: %w", err)
		}
		user.IsAdmin = isAdmin
	}

	return user, nil
}

// ResetCredential sets a random password for the user and returns it.
func (a *PasswordAuthenticator) ResetCredential(ctx context.Context, userID int64) (string, error) {
	if _, err := a.storage.GetUserByID(ctx, userID); err != nil {
		return "", err
	}

	password, err := generatePassword(generatedPasswordLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.storage.UpdatePasswordHash(ctx, userID, string(hashedPassword)); err != nil {
		return "", err
	}

	return password, nil
}

func generatePassword(n int) (string, error) {
	limit := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = passwordAlphabet[idx.Int64()]
	}
	return string(b), nil
}
