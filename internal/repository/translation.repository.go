package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/pkg/pg"
	"gorm.io/gorm"
)

type TranslationRepository struct {
	*pg.DB
}

func NewTranslationRepository(db *pg.DB) *TranslationRepository {
	return &TranslationRepository{
		db,
	}
}

// Create stores a completed translation. A non-nil external id is
// guaranteed unique by the table; a clash maps to ErrDuplicateExternal
// so callers can replay the stored record instead.
func (r *TranslationRepository) Create(ctx context.Context, t *model.Translation) (*model.Translation, error) {
	entity := toTranslationEntity(t)
	if entity.ID == "" {
		entity.ID = uuid.NewString()
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateExternal
		}
		return nil, err
	}

	return toTranslationModel(entity), nil
}

func (r *TranslationRepository) GetByID(ctx context.Context, id string) (*model.Translation, error) {
	var entity TranslationEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toTranslationModel(&entity), nil
}

// GetByExternalID looks up a translation by its caller-supplied
// idempotency key.
func (r *TranslationRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Translation, error) {
	var entity TranslationEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&entity).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toTranslationModel(&entity), nil
}

// List returns the user's translations newest first.
func (r *TranslationRepository) List(ctx context.Context, f model.HistoryFilter) ([]*model.Translation, int64, error) {
	f, err := f.Normalize()
	if err != nil {
		return nil, 0, err
	}

	q := r.Read(ctx).WithContext(ctx).
		Model(&TranslationEntity{}).
		Where("user_id = ?", f.UserID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []*TranslationEntity
	err = q.Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}

	return toTranslationModels(entities), total, nil
}
