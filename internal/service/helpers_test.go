package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"github.com/DiamondTaco/social-media-thing/internal/repository/sqlite"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

const testSecret = "test-secret-key-for-unit-tests-0123456789"

// testPasswordDigest stands in for the sha256 hex the client sends.
var testPasswordDigest = service.Digest("password123")

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type testServices struct {
	db         *sqlite.DB
	tokens     *service.TokenService
	usernames  *service.UsernameValidator
	accounts   *service.AccountService
	visibility *service.VisibilityResolver
	posts      *service.PostService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	db := newTestDB(t)
	tokens := service.NewTokenService(db.Users(), testSecret)
	usernames := service.NewUsernameValidator(db.Users(), 18)
	visibility := service.NewVisibilityResolver(db.Users(), db.Posts(), db.Comments())
	// Use cost 4 for fast tests.
	accounts := service.NewAccountService(db.Users(), tokens, usernames, 4, 32)
	return &testServices{
		db:         db,
		tokens:     tokens,
		usernames:  usernames,
		accounts:   accounts,
		visibility: visibility,
		posts:      service.NewPostService(db.Posts(), db.Comments(), visibility, 280),
	}
}

func (s *testServices) signup(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := s.accounts.Signup(context.Background(), username, testPasswordDigest)
	if err != nil {
		t.Fatalf("Signup %s: %v", username, err)
	}
	return user
}

// countingUsers records how often the token lookup reaches the store.
type countingUsers struct {
	domain.UserRepository
	tokenLookups atomic.Int32
}

func (c *countingUsers) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	c.tokenLookups.Add(1)
	return c.UserRepository.GetByToken(ctx, token)
}

var errStoreDown = errors.New("store down")

// failingUsers fails every lookup with errStoreDown.
type failingUsers struct {
	domain.UserRepository
}

func (failingUsers) GetByID(context.Context, int64) (*domain.User, error) {
	return nil, errStoreDown
}

func (failingUsers) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, errStoreDown
}

func (failingUsers) GetByToken(context.Context, string) (*domain.User, error) {
	return nil, errStoreDown
}

// failingPosts fails lookups of post failID and serves the rest.
type failingPosts struct {
	domain.PostRepository
	failID int64
}

func (f failingPosts) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	if id == f.failID {
		return nil, errStoreDown
	}
	return f.PostRepository.GetByID(ctx, id)
}

// failingCooldowns is a cooldown store whose backend is unreachable.
type failingCooldowns struct{}

func (failingCooldowns) Arm(context.Context, string, time.Duration) error { return errStoreDown }

func (failingCooldowns) Active(context.Context, string) (bool, error) { return false, errStoreDown }
