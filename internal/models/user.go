package models

import "time"

// User represents a registered account.
type User struct {
	// ID is assigned by the store on creation.
	ID int64

	// Username is unique across all accounts and used for login.
	Username string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// IsAdmin grants access to account administration.
	IsAdmin bool

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser builds a user with CreatedAt set to now.
func NewUser(username, passwordHash string, isAdmin bool) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().Unix(),
	}
}
