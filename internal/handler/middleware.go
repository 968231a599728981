package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

type contextKey string

const (
	userContextKey      contextKey = "user"
	requestIDContextKey contextKey = "request_id"
)

// tokenCookie is the cookie carrying the session token.
const tokenCookie = "token"

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// RequestIDFromContext returns the id RequestLogger assigned to the request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// RequireAuth is middleware that protects routes requiring authentication.
// It reads the token cookie, resolves it to an account and injects the user
// into the request context. Returns 401 for unauthenticated requests.
func RequireAuth(tokens *service.TokenService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := authenticateRequest(r, tokens)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth is middleware that attempts to authenticate but does not block
// unauthenticated requests. If a valid token is present, the user is injected
// into context; otherwise the request proceeds without a user.
func OptionalAuth(tokens *service.TokenService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := authenticateRequest(r, tokens)
		if err == nil && user != nil {
			ctx := context.WithValue(r.Context(), userContextKey, user)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func authenticateRequest(r *http.Request, tokens *service.TokenService) (*domain.User, error) {
	cookie, err := r.Cookie(tokenCookie)
	if err != nil {
		return nil, err
	}

	user, err := tokens.Authenticate(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			slog.ErrorContext(r.Context(), "authenticate request", "error", err,
				"request_id", RequestIDFromContext(r.Context()))
		}
		return nil, err
	}
	return user, nil
}

// RateLimit rejects a request with 429 while the client is cooling down on
// action, and otherwise arms a new cooldown of delay before serving it.
// Clients are identified by remote host.
func RateLimit(limiter *service.RateLimiter, action string, delay time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientHost(r)

		allowed, err := limiter.Allowed(r.Context(), action, client)
		if err != nil {
			slog.ErrorContext(r.Context(), "check rate limit", "error", err, "action", action)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
		if !allowed {
			writeError(w, http.StatusTooManyRequests, "Slow down.")
			return
		}

		if err := limiter.Arm(r.Context(), action, client, delay); err != nil {
			slog.ErrorContext(r.Context(), "arm rate limit", "error", err, "action", action)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with a fresh id, exposes it in the
// X-Request-ID response header and logs the request once it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		slog.InfoContext(ctx, "request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// SecurityHeaders sets conservative response headers on every request.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
