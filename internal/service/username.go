package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

// UsernameStatus is the outcome of a username check.
type UsernameStatus int

const (
	UsernameValid UsernameStatus = iota
	UsernameNotFound
	UsernameTaken
	UsernameInvalidCharacters
	UsernameInvalidLength
)

func (s UsernameStatus) String() string {
	switch s {
	case UsernameValid:
		return "valid"
	case UsernameNotFound:
		return "not-found"
	case UsernameTaken:
		return "taken"
	case UsernameInvalidCharacters:
		return "invalid-characters"
	case UsernameInvalidLength:
		return "invalid-length"
	default:
		return fmt.Sprintf("UsernameStatus(%d)", int(s))
	}
}

// UsernameValidator checks usernames against the allowed charset, the length
// limit and the set of registered accounts.
type UsernameValidator struct {
	users     domain.UserRepository
	maxLength int
}

// NewUsernameValidator creates a UsernameValidator.
func NewUsernameValidator(users domain.UserRepository, maxLength int) *UsernameValidator {
	return &UsernameValidator{users: users, maxLength: maxLength}
}

// Validate checks username. With existing set it looks for a registered
// account; otherwise it checks the name is free and of acceptable length.
// The charset check always runs first. On a store failure the status is
// UsernameNotFound, so an ignored error never passes a name as valid.
func (v *UsernameValidator) Validate(ctx context.Context, username string, existing bool) (UsernameStatus, error) {
	if !validUsernameChars(username) {
		return UsernameInvalidCharacters, nil
	}

	found, err := v.exists(ctx, username)
	if err != nil {
		return UsernameNotFound, err
	}

	if existing {
		if found {
			return UsernameValid, nil
		}
		return UsernameNotFound, nil
	}

	if found {
		return UsernameTaken, nil
	}
	if len(username) < 1 || len(username) > v.maxLength {
		return UsernameInvalidLength, nil
	}
	return UsernameValid, nil
}

func (v *UsernameValidator) exists(ctx context.Context, username string) (bool, error) {
	_, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup username: %w", err)
	}
	return true, nil
}

func validUsernameChars(username string) bool {
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
