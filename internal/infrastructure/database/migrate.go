package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.DefaultTokenProfile{},
		&entities.Token{},
	); err != nil {
		return err
	}
	log.Info().Msg("applied profile and token migrations")
	return nil
}
