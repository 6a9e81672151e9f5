package repository

import (
	"time"

	"github.com/lexora/translation-gateway/internal/model"
)

type UserEntity struct {
	ID           string    `db:"id"            gorm:"primaryKey;column:id"`
	Email        string    `db:"email"         gorm:"column:email;not null;unique"`
	PasswordHash string    `db:"password_hash" gorm:"column:password_hash;not null"`
	IsAdmin      bool      `db:"is_admin"      gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		IsAdmin:      m.IsAdmin,
		CreatedAt:    m.CreatedAt,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:           e.ID,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		IsAdmin:      e.IsAdmin,
		CreatedAt:    e.CreatedAt,
	}
}
