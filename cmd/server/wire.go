//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jsachs1300/wayfinder-api/internal/config"
	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/domain/registry"
	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
	"github.com/jsachs1300/wayfinder-api/internal/domain/waitlist"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/database"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/driftmonitor"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/logger"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/registryclient"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/repository/profilerepo"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/repository/tokenrepo"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/semcache"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/waitliststore"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver"
	"github.com/jsachs1300/wayfinder-api/internal/interfaces/httpserver/handlers"
)

var domainSet = wire.NewSet(
	profilerepo.NewRepository,
	wire.Bind(new(profile.Store), new(*profilerepo.Repository)),
	tokenrepo.NewRepository,
	wire.Bind(new(token.Repository), new(*tokenrepo.Repository)),
	registryclient.New,
	wire.Bind(new(registry.Client), new(*registryclient.Client)),
	waitliststore.NewStore,
	wire.Bind(new(waitlist.Store), new(*waitliststore.Store)),
	newRanker,
	newProfileService,
	newTokenService,
	waitlist.NewService,
	semcache.NewClient,
)

// BuildApplication assembles the profile service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newGormDB,
		newRedisClient,
		domainSet,
		handlers.NewProvider,
		httpserver.New,
		driftmonitor.New,
		NewApplication,
	)
	return nil, nil
}

func newGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func newRanker(cfg *config.Config) profile.Ranker {
	return profile.NewCatalogOrderRanker(cfg.RecommendedModelLimit)
}

func newProfileService(store profile.Store, registryClient registry.Client, ranker profile.Ranker, cfg *config.Config, log zerolog.Logger) *profile.Service {
	return profile.NewService(store, registryClient, ranker, profile.Config{
		Scope:             cfg.ProfileScope,
		RelaxedValidation: cfg.RegistryValidationRelaxed,
	}, log)
}

func newTokenService(repo token.Repository, profiles *profile.Service, registryClient registry.Client, cfg *config.Config, log zerolog.Logger) *token.Service {
	return token.NewService(repo, profiles, registryClient, token.Config{KeyPrefix: cfg.TokenPrefix}, log)
}
