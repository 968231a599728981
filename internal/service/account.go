package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// passwordDigestLength is the length of the hex SHA-256 the client sends in
// place of the plaintext password.
const passwordDigestLength = 64

// AccountService handles signup, login and credential changes.
type AccountService struct {
	users                domain.UserRepository
	tokens               *TokenService
	usernames            *UsernameValidator
	bcryptCost           int
	maxDisplayNameLength int
}

// NewAccountService creates a new AccountService.
func NewAccountService(users domain.UserRepository, tokens *TokenService, usernames *UsernameValidator, bcryptCost, maxDisplayNameLength int) *AccountService {
	return &AccountService{
		users:                users,
		tokens:               tokens,
		usernames:            usernames,
		bcryptCost:           bcryptCost,
		maxDisplayNameLength: maxDisplayNameLength,
	}
}

// UsernameError reports a username rejected at signup.
type UsernameError struct {
	Status UsernameStatus
}

func (e *UsernameError) Error() string {
	return "username " + e.Status.String()
}

func (e *UsernameError) Unwrap() error {
	if e.Status == UsernameTaken {
		return domain.ErrDuplicateUsername
	}
	return domain.ErrInvalidInput
}

// Signup registers a new account and returns it with its session token set.
func (s *AccountService) Signup(ctx context.Context, username, passwordDigest string) (*domain.User, error) {
	status, err := s.usernames.Validate(ctx, username, false)
	if err != nil {
		return nil, err
	}
	if status != UsernameValid {
		return nil, &UsernameError{Status: status}
	}

	if !validPasswordDigest(passwordDigest) {
		return nil, fmt.Errorf("%w: password must be sent as a sha256 hex digest", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwordDigest), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := TrimWhitespace(username, true)
	if len(displayName) > s.maxDisplayNameLength {
		displayName = displayName[:s.maxDisplayNameLength]
	}

	user := &domain.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Token:        s.tokens.Generate(username, passwordDigest),
		Theme:        DefaultTheme,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the account's session token.
func (s *AccountService) Login(ctx context.Context, username, passwordDigest string) (string, error) {
	user, err := s.verify(ctx, username, passwordDigest)
	if err != nil {
		return "", err
	}
	return user.Token, nil
}

// ChangePassword replaces the password and issues a new token. The old token
// stops working immediately.
func (s *AccountService) ChangePassword(ctx context.Context, username, currentDigest, newDigest string) (string, error) {
	user, err := s.verify(ctx, username, currentDigest)
	if err != nil {
		return "", err
	}

	if !validPasswordDigest(newDigest) {
		return "", fmt.Errorf("%w: password must be sent as a sha256 hex digest", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newDigest), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	token := s.tokens.Generate(user.Username, newDigest)
	if err := s.users.UpdateCredentials(ctx, user.ID, string(hash), token); err != nil {
		return "", fmt.Errorf("update credentials: %w", err)
	}
	return token, nil
}

// SetPrivate toggles whether the account's content is limited to followers.
func (s *AccountService) SetPrivate(ctx context.Context, userID int64, private bool) error {
	return s.users.SetPrivate(ctx, userID, private)
}

// Follow makes follower follow the account named username.
func (s *AccountService) Follow(ctx context.Context, followerID int64, username string) error {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return fmt.Errorf("%w: cannot follow yourself", domain.ErrInvalidInput)
	}
	return s.users.Follow(ctx, followerID, target.ID)
}

// Unfollow removes a follow relation if present.
func (s *AccountService) Unfollow(ctx context.Context, followerID int64, username string) error {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.users.Unfollow(ctx, followerID, target.ID)
}

func (s *AccountService) verify(ctx context.Context, username, passwordDigest string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(passwordDigest)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func validPasswordDigest(d string) bool {
	return len(d) == passwordDigestLength && isLowerHex(d)
}
