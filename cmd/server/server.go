package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jsachs1300/wayfinder-api/internal/config"
	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
	"github.com/jsachs1300/wayfinder-api/internal/domain/waitlist"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/database"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/driftmonitor"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/logger"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/observability"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/registryclient"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/repository/profilerepo"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/repository/tokenrepo"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/semcache"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/waitliststore"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/handlers"
)

// Application runs the HTTP server and the profile drift monitor together.
type Application struct {
	httpServer *httpserver.HttpServer
	drift      *driftmonitor.Monitor
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, drift *driftmonitor.Monitor, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		drift:      drift,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return a.httpServer.Run(ctx) })
	group.Go(func() error { return a.drift.Run(ctx) })
	return group.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if cfg.AutoMigrate {
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	registryClient := registryclient.New(cfg, log)
	cache := semcache.NewClient(rdb, log)

	profileService := profile.NewService(
		profilerepo.NewRepository(db),
		registryClient,
		profile.NewCatalogOrderRanker(cfg.RecommendedModelLimit),
		profile.Config{Scope: cfg.ProfileScope, RelaxedValidation: cfg.RegistryValidationRelaxed},
		log,
	)
	tokenService := token.NewService(
		tokenrepo.NewRepository(db),
		profileService,
		registryClient,
		token.Config{KeyPrefix: cfg.TokenPrefix},
		log,
	)
	waitlistService := waitlist.NewService(waitliststore.NewStore(rdb), log)

	provider := handlers.NewProvider(cfg, profileService, tokenService, registryClient, cache, waitlistService, log)
	httpServer := httpserver.New(cfg, log, provider, db, cache)
	drift := driftmonitor.New(profileService, cfg, log)

	app := NewApplication(httpServer, drift, log)
	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
