package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DiamondTaco/social-media-thing/internal/config"
	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"github.com/DiamondTaco/social-media-thing/internal/handler"
	"github.com/DiamondTaco/social-media-thing/internal/repository/redis"
	"github.com/DiamondTaco/social-media-thing/internal/repository/sqlite"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	cooldowns, closeCooldowns, err := newCooldownStore(cfg)
	if err != nil {
		return err
	}
	defer closeCooldowns()

	tokens := service.NewTokenService(db.Users(), cfg.ServerSecret)
	usernames := service.NewUsernameValidator(db.Users(), cfg.MaxUsernameLength)
	visibility := service.NewVisibilityResolver(db.Users(), db.Posts(), db.Comments())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, cfg, handler.Services{
		Tokens:     tokens,
		Accounts:   service.NewAccountService(db.Users(), tokens, usernames, cfg.BcryptCost, cfg.MaxDisplayNameLength),
		Usernames:  usernames,
		Posts:      service.NewPostService(db.Posts(), db.Comments(), visibility, cfg.MaxPostLength),
		Visibility: visibility,
		Limiter:    service.NewRateLimiter(cooldowns, cfg.RateLimiting),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr, "rate_limiting", cfg.RateLimiting)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newCooldownStore picks Redis when an address is configured so several
// instances share cooldowns, and an in-process table otherwise.
func newCooldownStore(cfg config.Config) (domain.CooldownStore, func(), error) {
	if cfg.RedisAddr == "" {
		slog.Info("using in-memory cooldowns")
		return service.NewMemoryCooldowns(), func() {}, nil
	}

	client, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using redis cooldowns", "addr", cfg.RedisAddr)
	return redis.NewCooldownStore(client), func() { client.Close() }, nil
}
