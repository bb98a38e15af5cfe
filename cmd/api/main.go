package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "qrate/internal/adapters/http_server"
	"qrate/internal/adapters/credentials"
	"qrate/internal/adapters/mailer"
	"qrate/internal/adapters/moderation"
	"qrate/internal/adapters/observability"
	redisad "qrate/internal/adapters/redis"
	"qrate/internal/app"
	"qrate/internal/domain"
	"qrate/internal/shared"
	"qrate/internal/storage/memory"
	mysqlrepo "qrate/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(reg))

	store, cache, limiter, closeFn := openBackends(ctx, cfg)
	defer closeFn()

	var notifier domain.Notifier = mailer.LogNotifier{}
	if cfg.Mail.SendGridKey != "" {
		c, err := mailer.New(cfg.Mail.SendGridHost, cfg.Mail.SendGridKey, cfg.Mail.FromName, cfg.Mail.From, cfg.Mail.RPS)
		if err != nil {
			log.Fatal().Err(err).Msg("mailer init failed")
		}
		notifier = c
	}

	tokens, err := credentials.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt init failed")
	}
	hasher := credentials.NewBcrypt(cfg.BcryptCost)
	lexicon := moderation.NewLexicon(cfg.ModerationExtraWords)

	gate := app.NewGate(store, tokens)
	events := observability.Recorder{}
	pipeline := app.NewWritePipeline(gate, app.NewModerator(lexicon).WithRecorder(events))
	authSvc := app.NewAuthService(store, hasher, tokens, notifier, app.AuthConfig{
		EmailDomain: cfg.EmailDomain,
		BackendURL:  cfg.BackendURL,
	}).WithRecorder(events)

	var opts []server.Option
	if cfg.TrustProxyHeaders {
		opts = append(opts, server.WithTrustedProxy())
	}
	srv := server.New(opts...)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:     app.NewCatalogService(store, store, cache, cfg.CacheTTL()),
		Reviews:     app.NewReviewService(store),
		Auth:        authSvc,
		Pipeline:    pipeline,
		Limiter:     limiter,
		FrontendURL: cfg.FrontendURL,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openBackends returns the record store, page cache and auth limiter for the
// configured STORE. The memory backend runs without a limiter.
func openBackends(ctx context.Context, cfg shared.Config) (domain.Store, domain.Cache, domain.RateLimiter, func()) {
	if cfg.Store == shared.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.New(), memory.NewCache(), nil, func() {}
	}

	db, err := mysqlrepo.Open(ctx, cfg.MySQL.DSN, mysqlrepo.Options{
		MaxOpenConns: cfg.MySQL.MaxOpenConns,
		WriteTimeout: cfg.MySQL.WriteTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mysql open failed")
	}
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Msg("database connection ok")

	rc := redisad.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cache := redisad.New(rc)
	if err := cache.Ping(ctx); err != nil {
		// the cache and limiter both degrade gracefully
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable")
	}

	var limiter domain.RateLimiter
	if cfg.AuthRatePerMinute > 0 {
		l, err := redisad.NewFixedWindowLimiter(rc, "rl:auth", cfg.AuthRatePerMinute, time.Minute)
		if err != nil {
			log.Fatal().Err(err).Msg("rate limiter init failed")
		}
		limiter = l
	}

	return mysqlrepo.New(db), cache, limiter, func() {
		_ = rc.Close()
		_ = db.Close()
	}
}
