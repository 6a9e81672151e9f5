package repository

import (
	"time"

	"github.com/lexora/translation-gateway/internal/model"
)

type TransactionEntity struct {
	ID        string      `db:"id"         gorm:"primaryKey;column:id"`
	UserID    string      `db:"user_id"    gorm:"column:user_id;not null;index"`
	User      *UserEntity `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Amount    int64       `db:"amount"     gorm:"column:amount;not null;check:amount > 0"`
	Type      string      `db:"type"       gorm:"column:type;not null"`
	// created_at is store-assigned so history ordering does not depend
	// on application clocks.
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:        m.ID,
		UserID:    m.UserID,
		Amount:    m.Amount,
		Type:      string(m.Type),
		CreatedAt: m.CreatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:        e.ID,
		UserID:    e.UserID,
		Amount:    e.Amount,
		Type:      model.TransactionType(e.Type),
		CreatedAt: e.CreatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
