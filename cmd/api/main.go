// @title                       Eventboard API
// @version                     1.0
// @description                 Event publishing and registration service.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/eventboard/eventboard/internal/api"
	"github.com/eventboard/eventboard/internal/core/service"
	"github.com/eventboard/eventboard/internal/infrastructure/config"
	mongostore "github.com/eventboard/eventboard/internal/infrastructure/db/mongo"
	dbredis "github.com/eventboard/eventboard/internal/infrastructure/db/redis"
	httpserver "github.com/eventboard/eventboard/internal/infrastructure/http"
	"github.com/eventboard/eventboard/internal/infrastructure/http/handlers"
	"github.com/eventboard/eventboard/internal/infrastructure/queue"
	"github.com/eventboard/eventboard/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		// Init is a no-op when run already configured the logger.
		log := logger.Init(logger.Options{Service: "eventboard"})
		log.Fatal().Err(err).Msg("eventboard stopped")
	}
}

func run() error {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "eventboard",
		Env:     cfg.Env,
	})

	// --- MongoDB ---
	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	checks := map[string]handlers.Check{"mongodb": handlers.MongoCheck(db)}

	// --- Redis (optional: rate limiting fails open without it) ---
	var rdb *redis.Client
	if c, err := dbredis.Connect(ctx, dbredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without rate limiting")
	} else {
		rdb = c
		defer func() { _ = rdb.Close() }()
		checks["redis"] = handlers.RedisCheck(rdb)
	}

	// --- Stores ---
	users := mongostore.NewUserRepository(db, cfg.Mongo.StoreTimeout)
	events := mongostore.NewEventRepository(db, cfg.Mongo.StoreTimeout)
	registrations := mongostore.NewRegistrationRepository(db, cfg.Mongo.StoreTimeout)

	// --- Services ---
	retrier := queue.NewCascadeRetrier(cfg.Cascade.Workers, cfg.Cascade.MaxAttempts, registrations, log)

	authService := service.NewAuthService(users, service.AuthOptions{
		JWTSecret:            cfg.Auth.JWTSecret,
		TokenTTL:             cfg.Auth.TokenTTL,
		AdminRegistrationKey: cfg.Auth.AdminRegistrationKey,
	}, log)
	eventService := service.NewEventService(events, registrations, users, retrier, log)
	registrationService := service.NewRegistrationService(events, registrations, log)

	proxies, err := cfg.RateLimit.ProxyNets()
	if err != nil {
		return err
	}

	var limiter *dbredis.Limiter
	if rdb != nil {
		limiter = dbredis.NewLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window)
	}

	e := api.NewRouter(api.Deps{
		Auth:           authService,
		Events:         eventService,
		Registrations:  registrationService,
		Limiter:        limiter,
		Checks:         checks,
		Log:            log,
		TrustedProxies: proxies,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return retrier.Run(gctx)
	})
	g.Go(func() error {
		return httpserver.Serve(gctx, e, ":"+cfg.Port, 10*time.Second, log)
	})

	log.Info().Str("env", cfg.Env).Msg("eventboard started")
	return g.Wait()
}
