package main

import (
	"context"
	"log/slog"
	"os"

	"ssoweb/internal/auth"
	"ssoweb/internal/config"
	"ssoweb/internal/cookie"
	"ssoweb/internal/httpserver"
	"ssoweb/internal/identity"
	"ssoweb/internal/logger"
	"ssoweb/internal/pg"
	"ssoweb/internal/redis"
	"ssoweb/internal/session"
	"ssoweb/internal/web"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.App.LogLevel)),
		logger.WithFormat(logger.Format(cfg.App.LogFormat)),
		logger.WithAttr(slog.String("service", "ssoweb")),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	var (
		identities identity.Store
		sessions   session.Store
		states     auth.StateStore
	)

	if cfg.App.DevMode {
		log.InfoContext(ctx, "dev mode: using in-memory stores")
		identities = identity.NewMemoryStore()
		sessions = session.NewMemoryStore(cfg.Session.CleanupInterval)
		states = auth.NewMemoryStateStore(cfg.Session.CleanupInterval)
	} else {
		pool, err := pg.Connect(ctx, cfg.PG)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
			return err
		}

		redisClient, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()

		identities = identity.NewPgStore(pool)
		sessions = session.NewRedisStore(redisClient)
		states = auth.NewRedisStateStore(redisClient)
	}

	cookieMgr, err := cookie.New(cfg.App.SessionSecrets)
	if err != nil {
		return err
	}

	sessionMgr := session.New(
		session.WithConfig(cfg.Session),
		session.WithStore(sessions),
		session.WithTransport(session.NewCookieTransport(cookieMgr, cfg.Session.CookieName, cfg.Session.SecureCookies)),
	)

	authSvc := auth.NewService(identities, states,
		[]auth.Provider{
			auth.NewGitHub(cfg.GitHub, cfg.App.CallbackURL(auth.ProviderGitHub)),
			auth.NewMicrosoft(cfg.Microsoft, cfg.App.CallbackURL(auth.ProviderMicrosoft)),
		},
		auth.WithLogger(log),
		auth.WithStateTTL(cfg.App.StateTTL),
	)

	router := web.NewRouter(log, authSvc, sessionMgr)

	return httpserver.New(cfg.HTTP, log).Run(ctx, router)
}
