package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/pkg/pg"
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

// Create appends a ledger entry. Entries are immutable; both topups and
// debits carry positive amounts.
func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if txn.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	entity := toTransactionEntity(txn)
	if entity.ID == "" {
		entity.ID = uuid.NewString()
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

// List returns the user's ledger entries newest first.
func (r *TransactionRepository) List(ctx context.Context, f model.HistoryFilter) ([]*model.Transaction, int64, error) {
	f, err := f.Normalize()
	if err != nil {
		return nil, 0, err
	}

	q := r.Read(ctx).WithContext(ctx).
		Model(&TransactionEntity{}).
		Where("user_id = ?", f.UserID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []*TransactionEntity
	err = q.Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&entities).
		Error
	if err != nil {
		return nil, 0, err
	}

	return toTransactionModels(entities), total, nil
}
