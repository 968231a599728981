package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/DiamondTaco/social-media-thing/internal/config"
	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"github.com/DiamondTaco/social-media-thing/internal/handler"
	"github.com/DiamondTaco/social-media-thing/internal/repository/sqlite"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

const testSecret = "test-secret-for-handler-tests-0123456789"

var testPassword = service.Digest("password123")

type testEnv struct {
	cfg      config.Config
	svc      handler.Services
	cooldown *service.MemoryCooldowns
	mux      *http.ServeMux
}

func newTestEnv(t *testing.T, rateLimiting bool) *testEnv {
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

	cfg := config.Default()
	cfg.ServerSecret = testSecret
	cfg.BcryptCost = 4
	cfg.RateLimiting = rateLimiting
	cfg.CookieSecure = false

	tokens := service.NewTokenService(db.Users(), cfg.ServerSecret)
	usernames := service.NewUsernameValidator(db.Users(), cfg.MaxUsernameLength)
	visibility := service.NewVisibilityResolver(db.Users(), db.Posts(), db.Comments())
	cooldown := service.NewMemoryCooldowns()

	env := &testEnv{
		cfg: cfg,
		svc: handler.Services{
			Tokens:     tokens,
			Accounts:   service.NewAccountService(db.Users(), tokens, usernames, cfg.BcryptCost, cfg.MaxDisplayNameLength),
			Usernames:  usernames,
			Posts:      service.NewPostService(db.Posts(), db.Comments(), visibility, cfg.MaxPostLength),
			Visibility: visibility,
			Limiter:    service.NewRateLimiter(cooldown, cfg.RateLimiting),
		},
		cooldown: cooldown,
		mux:      http.NewServeMux(),
	}
	handler.RegisterRoutes(env.mux, cfg, env.svc)
	return env
}

// signup registers username directly through the service and returns it.
func (e *testEnv) signup(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := e.svc.Accounts.Signup(context.Background(), username, testPassword)
	if err != nil {
		t.Fatalf("Signup %s: %v", username, err)
	}
	return user
}

// do serves a request against the mux, optionally as user.
func (e *testEnv) do(t *testing.T, method, path string, body any, user *domain.User) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != nil {
		req.AddCookie(&http.Cookie{Name: "token", Value: user.Token})
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return v
}
