package profilerepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jsachs1300/wayfinder-api/internal/domain/profile"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/database/entities"
	"github.com/jsachs1300/wayfinder-api/internal/utils/platformerrors"
)

// Repository persists the singleton default-token profile row per scope.
type Repository struct {
	db *gorm.DB
}

var _ profile.Store = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Read(ctx context.Context, scope string) (*profile.DefaultTokenProfile, error) {
	var entity entities.DefaultTokenProfile
	err := r.db.WithContext(ctx).Where("scope = ?", scope).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, profile.ErrNotInitialized
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to read default-token profile", err)
	}
	return mapEntity(ctx, entity)
}

// CompareAndSwap performs a single-row conditional UPDATE so the version
// check and the write are one atomic statement; the guarantee holds across
// service instances without any in-process lock. A zero expected version with
// no stored row bootstraps the profile at version 1.
func (r *Repository) CompareAndSwap(ctx context.Context, scope string, expectedVersion int64, modelIDs []string, actor string) (*profile.DefaultTokenProfile, error) {
	if modelIDs == nil {
		modelIDs = []string{}
	}
	payload, err := json.Marshal(modelIDs)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal, "failed to encode model IDs", err)
	}

	res := r.db.WithContext(ctx).Model(&entities.DefaultTokenProfile{}).
		Where("scope = ? AND version = ?", scope, expectedVersion).
		Updates(map[string]any{
			"model_ids":  datatypes.JSON(payload),
			"version":    gorm.Expr("version + 1"),
			"updated_by": actor,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update default-token profile", res.Error)
	}
	if res.RowsAffected == 1 {
		return r.Read(ctx, scope)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.DefaultTokenProfile{}).Where("scope = ?", scope).Count(&count).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to check default-token profile", err)
	}
	if count > 0 || expectedVersion != 0 {
		return nil, profile.ErrVersionConflict
	}

	entity := entities.DefaultTokenProfile{
		Scope:     scope,
		ModelIDs:  datatypes.JSON(payload),
		Version:   1,
		UpdatedBy: actor,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		// A concurrent writer bootstrapped the row first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, profile.ErrVersionConflict
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to bootstrap default-token profile", err)
	}
	return r.Read(ctx, scope)
}

func mapEntity(ctx context.Context, entity entities.DefaultTokenProfile) (*profile.DefaultTokenProfile, error) {
	modelIDs := []string{}
	if len(entity.ModelIDs) > 0 {
		if err := json.Unmarshal(entity.ModelIDs, &modelIDs); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal, "failed to decode stored model IDs", err)
		}
	}
	return &profile.DefaultTokenProfile{
		Scope:     entity.Scope,
		ModelIDs:  modelIDs,
		Version:   entity.Version,
		UpdatedAt: entity.UpdatedAt,
		UpdatedBy: entity.UpdatedBy,
	}, nil
}
