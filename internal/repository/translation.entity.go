package repository

import (
	"time"

	"github.com/lexora/translation-gateway/internal/model"
)

type TranslationEntity struct {
	ID         string      `db:"id"          gorm:"primaryKey;column:id"`
	UserID     string      `db:"user_id"     gorm:"column:user_id;not null;index"`
	User       *UserEntity `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	ExternalID *string     `db:"external_id" gorm:"column:external_id;unique"`
	InputText  string      `db:"input_text"  gorm:"column:input_text;not null"`
	OutputText string      `db:"output_text" gorm:"column:output_text;not null"`
	SourceLang string      `db:"source_lang" gorm:"column:source_lang;not null"`
	TargetLang string      `db:"target_lang" gorm:"column:target_lang;not null"`
	Cost       *int64      `db:"cost"        gorm:"column:cost"`
	CreatedAt  time.Time   `db:"created_at"  gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (TranslationEntity) TableName() string {
	return "translations"
}

func toTranslationEntity(m *model.Translation) *TranslationEntity {
	if m == nil {
		return nil
	}
	return &TranslationEntity{
		ID:         m.ID,
		UserID:     m.UserID,
		ExternalID: m.ExternalID,
		InputText:  m.InputText,
		OutputText: m.OutputText,
		SourceLang: m.SourceLang,
		TargetLang: m.TargetLang,
		Cost:       m.Cost,
		CreatedAt:  m.CreatedAt,
	}
}

func toTranslationModel(e *TranslationEntity) *model.Translation {
	if e == nil {
		return nil
	}
	return &model.Translation{
		ID:         e.ID,
		UserID:     e.UserID,
		ExternalID: e.ExternalID,
		InputText:  e.InputText,
		OutputText: e.OutputText,
		SourceLang: e.SourceLang,
		TargetLang: e.TargetLang,
		Cost:       e.Cost,
		CreatedAt:  e.CreatedAt,
	}
}

func toTranslationModels(entities []*TranslationEntity) []*model.Translation {
	if entities == nil {
		return nil
	}
	models := make([]*model.Translation, len(entities))
	for i, e := range entities {
		models[i] = toTranslationModel(e)
	}
	return models
}
