package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
)

// TokenService derives and checks session tokens.
//
// A token is Digest(Digest(username + ":" + passwordDigest) + key), where key
// is the digest of the server secret. Tokens only change when credentials or
// the secret change.
type TokenService struct {
	users domain.UserRepository
	key   string
}

// NewTokenService creates a TokenService keyed by the given server secret.
func NewTokenService(users domain.UserRepository, serverSecret string) *TokenService {
	return &TokenService{
		users: users,
		key:   Digest(serverSecret),
	}
}

// Generate returns the token for a username and client-side password digest.
func (s *TokenService) Generate(username, passwordDigest string) string {
	return Digest(Digest(username+":"+passwordDigest) + s.key)
}

// Validate reports whether token belongs to exactly one account. Empty and
// non-hex tokens are rejected without touching the store. Store failures
// other than a missing user are returned.
func (s *TokenService) Validate(ctx context.Context, token string) (bool, error) {
	if !wellFormedToken(token) {
		return false, nil
	}

	_, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup token: %w", err)
	}
	return true, nil
}

// Authenticate resolves a token to its account.
// Returns domain.ErrUnauthorized when the token is malformed or unknown.
func (s *TokenService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if !wellFormedToken(token) {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	return user, nil
}

func wellFormedToken(token string) bool {
	return token != "" && isLowerHex(token)
}
