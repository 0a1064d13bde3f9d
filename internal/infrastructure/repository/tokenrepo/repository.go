package tokenrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jsachs1300/wayfinder-api/internal/domain/token"
	"github.com/jsachs1300/wayfinder-api/internal/infrastructure/database/entities"
	"github.com/jsachs1300/wayfinder-api/internal/utils/platformerrors"
)

// Repository handles token persistence.
type Repository struct {
	db *gorm.DB
}

var _ token.Repository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, tok *token.Token) (*token.Token, error) {
	entity, err := toEntity(ctx, tok)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create token", err)
	}
	return fromEntity(ctx, *entity)
}

func (r *Repository) List(ctx context.Context) ([]token.Token, error) {
	var rows []entities.Token
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list tokens", err)
	}
	tokens := make([]token.Token, 0, len(rows))
	for _, row := range rows {
		tok, err := fromEntity(ctx, row)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *tok)
	}
	return tokens, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*token.Token, error) {
	var entity entities.Token
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find token", err)
	}
	return fromEntity(ctx, entity)
}

func (r *Repository) UpdateSecret(ctx context.Context, id, hash, suffix string) error {
	res := r.db.WithContext(ctx).Model(&entities.Token{}).Where("id = ?", id).
		Updates(map[string]any{
			"hash":       hash,
			"suffix":     suffix,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to rotate token secret", res.Error)
	}
	if res.RowsAffected == 0 {
		return token.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Token{})
	if res.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete token", res.Error)
	}
	if res.RowsAffected == 0 {
		return token.ErrNotFound
	}
	return nil
}

func toEntity(ctx context.Context, tok *token.Token) (*entities.Token, error) {
	models := tok.EligibleModels
	if models == nil {
		models = []string{}
	}
	payload, err := json.Marshal(models)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal, "failed to encode eligible models", err)
	}
	return &entities.Token{
		ID:             tok.ID,
		Name:           tok.Name,
		Prefix:         tok.Prefix,
		Suffix:         tok.Suffix,
		Hash:           tok.Hash,
		EligibleModels: datatypes.JSON(payload),
		Environment:    tok.Environment,
		CreatedBy:      tok.CreatedBy,
	}, nil
}

func fromEntity(ctx context.Context, entity entities.Token) (*token.Token, error) {
	models := []string{}
	if len(entity.EligibleModels) > 0 {
		if err := json.Unmarshal(entity.EligibleModels, &models); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal, "failed to decode eligible models", err)
		}
	}
	return &token.Token{
		ID:             entity.ID,
		Name:           entity.Name,
		Prefix:         entity.Prefix,
		Suffix:         entity.Suffix,
		Hash:           entity.Hash,
		EligibleModels: models,
		Environment:    entity.Environment,
		CreatedBy:      entity.CreatedBy,
		CreatedAt:      entity.CreatedAt,
		UpdatedAt:      entity.UpdatedAt,
	}, nil
}
