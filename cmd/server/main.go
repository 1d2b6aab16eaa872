// @title                      Report Portal API
// @version                    1.0
// @description                Users, clients and embedded BI reports with role-scoped visibility.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/biportal/portal-api/internal/api"
	"github.com/biportal/portal-api/internal/core/service"
	mongodb "github.com/biportal/portal-api/internal/infrastructure/db/mongo"
	redisdb "github.com/biportal/portal-api/internal/infrastructure/db/redis"
	httpserver "github.com/biportal/portal-api/internal/infrastructure/http"
	"github.com/biportal/portal-api/internal/infrastructure/http/handlers"
	"github.com/biportal/portal-api/internal/pkg/config"
	"github.com/biportal/portal-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	// --- Dependencies ---
	users := mongodb.NewUserRepository(db)
	clients := mongodb.NewClientRepository(db)
	reports := mongodb.NewReportRepository(db)
	tx := mongodb.NewTransactor(mongoClient)

	tokens := service.NewTokenIssuer(
		cfg.JWTSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		redisdb.NewRevocationList(rdb),
	)

	authService := service.NewAuthService(users, tokens, logger.Component("auth"))
	userService := service.NewUserService(users, clients, reports, tx, logger.Component("users"))
	clientService := service.NewClientService(clients, users, reports, tx, logger.Component("clients"))
	reportService := service.NewReportService(reports, clients, tx, logger.Component("reports"))

	if cfg.Bootstrap.Enabled() {
		if err := authService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			return err
		}
	}

	router := api.NewRouter(api.Deps{
		Auth:     authService,
		Verifier: tokens,
		Users:    userService,
		Clients:  clientService,
		Reports:  reportService,
		Checks: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	})

	return httpserver.NewServer(router, cfg.Port, log).Run(ctx)
}
