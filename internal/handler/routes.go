package handler

import (
	"net/http"
	"time"

	"github.com/DiamondTaco/social-media-thing/internal/config"
	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

// Cooldowns applied per client host to write endpoints.
const (
	signupCooldown  = 15 * time.Second
	loginCooldown   = time.Second
	postCooldown    = 3 * time.Second
	commentCooldown = 3 * time.Second
	likeCooldown    = 100 * time.Millisecond
	followCooldown  = 500 * time.Millisecond
)

// Services bundles the services the HTTP layer calls into.
type Services struct {
	Tokens     *service.TokenService
	Accounts   *service.AccountService
	Usernames  *service.UsernameValidator
	Posts      *service.PostService
	Visibility *service.VisibilityResolver
	Limiter    *service.RateLimiter
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, cfg config.Config, svc Services) {
	accounts := NewAccountHandler(svc.Accounts, svc.Tokens, svc.Usernames, cfg.CookieSecure)
	posts := NewPostHandler(svc.Posts, svc.Visibility)

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(svc.Tokens, h)
	}
	optionalAuth := func(h http.HandlerFunc) http.Handler {
		return OptionalAuth(svc.Tokens, h)
	}
	limit := func(action string, delay time.Duration, h http.Handler) http.Handler {
		return RateLimit(svc.Limiter, action, delay, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /api/site", optionalAuth(HandleSite(cfg)))

	// Account routes.
	mux.Handle("POST /api/account/signup", limit("signup", signupCooldown, http.HandlerFunc(accounts.HandleSignup)))
	mux.Handle("POST /api/account/login", limit("login", loginCooldown, http.HandlerFunc(accounts.HandleLogin)))
	mux.HandleFunc("POST /api/account/logout", accounts.HandleLogout)
	mux.HandleFunc("GET /api/account/username", accounts.HandleCheckUsername)
	mux.Handle("GET /api/account/me", requireAuth(accounts.HandleMe))
	mux.Handle("PATCH /api/account/password", requireAuth(accounts.HandleChangePassword))
	mux.Handle("PATCH /api/account/private", requireAuth(accounts.HandleSetPrivate))
	mux.Handle("POST /api/user/{username}/follow", limit("follow", followCooldown, requireAuth(accounts.HandleFollow)))
	mux.Handle("DELETE /api/user/{username}/follow", limit("follow", followCooldown, requireAuth(accounts.HandleUnfollow)))

	// Post and comment routes.
	mux.Handle("GET /api/post/{id}", optionalAuth(posts.HandleGetPost))
	mux.Handle("GET /api/comment/{id}", optionalAuth(posts.HandleGetComment))
	mux.Handle("POST /api/post", limit("post", postCooldown, requireAuth(posts.HandleCreatePost)))
	mux.Handle("POST /api/comment", limit("comment", commentCooldown, requireAuth(posts.HandleCreateComment)))
	mux.Handle("POST /api/post/{id}/like", limit("like", likeCooldown, requireAuth(posts.HandleLike(domain.QuotePost, false))))
	mux.Handle("DELETE /api/post/{id}/like", limit("like", likeCooldown, requireAuth(posts.HandleLike(domain.QuotePost, true))))
	mux.Handle("POST /api/comment/{id}/like", limit("like", likeCooldown, requireAuth(posts.HandleLike(domain.QuoteComment, false))))
	mux.Handle("DELETE /api/comment/{id}/like", limit("like", likeCooldown, requireAuth(posts.HandleLike(domain.QuoteComment, true))))
}
