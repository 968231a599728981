package domain

import (
	"context"
	"slices"
	"time"
)

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string // bcrypt hash of the client-side password digest
	Token        string // lowercase hex session token derived from the credentials
	Private      bool
	Theme        string
	Followers    []int64 // IDs of users following this account
	CreatedAt    time.Time
}

// HasFollower reports whether the user with the given ID follows u.
func (u *User) HasFollower(id int64) bool {
	return slices.Contains(u.Followers, id)
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByToken(ctx context.Context, token string) (*User, error)
	// UpdateCredentials replaces the password hash and session token together.
	UpdateCredentials(ctx context.Context, id int64, passwordHash, token string) error
	SetPrivate(ctx context.Context, id int64, private bool) error
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
}
