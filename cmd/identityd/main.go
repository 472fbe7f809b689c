// Command identityd serves the identity store over HTTP.
//
// @title                       Identity Store API
// @version                     1.0
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/99minutos/identity-store/internal/api"
	"github.com/99minutos/identity-store/internal/core/service"
	"github.com/99minutos/identity-store/internal/infrastructure/db/mongo"
	"github.com/99minutos/identity-store/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-store/internal/infrastructure/queue"
	"github.com/99minutos/identity-store/internal/pkg/config"
	"github.com/99minutos/identity-store/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "identityd",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "identityd",
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	users := mongo.NewUserCollection(db, cfg.Mongo.UsersCollection)
	roles := mongo.NewRoleRepository(db, cfg.Mongo.RolesCollection)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes")
	}
	if err := roles.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("role indexes")
	}

	// --- Store ---
	normalizer := service.UpperInvariantNormalizer{}
	var opts []service.Option

	// --- Redis (optional) ---
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		opts = append(opts, service.WithCreateGuard(
			redis.NewCreateGuard(rdb, cfg.Redis.CreateLockTTL, logger.Component("create_guard")),
		))
	}

	store := service.NewUserStore(users, roles, normalizer, logger.Component("userstore"), opts...)

	authService := service.NewAuthService(store, normalizer, cfg.JWTSecret, cfg.TokenTTL, service.LockoutPolicy{
		MaxFailedAttempts: cfg.Lockout.MaxFailedAttempts,
		Duration:          cfg.Lockout.Duration,
	}, logger.Component("auth"))

	importService := service.NewImportService(store, normalizer, logger.Component("import"))
	dispatcher := queue.NewDispatcher(cfg.Import.Workers, importService, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		DB:         db,
		Redis:      rdb,
		Users:      store,
		Roles:      roles,
		Auth:       authService,
		Importer:   dispatcher,
		Normalizer: normalizer,
		JWTSecret:  cfg.JWTSecret,
		Log:        logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("identityd listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
