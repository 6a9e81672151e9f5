package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository is the storage half of the wallet service. Balance
// mutation goes through LockForUpdate + Credit/Debit inside a single
// unit of work; the caller pairs every mutation with a ledger row in
// the same transaction.
type WalletRepository struct {
	*pg.DB
}

func NewWalletRepository(db *pg.DB) *WalletRepository {
	return &WalletRepository{
		db,
	}
}

// GetOrCreate returns the user's wallet, creating it with balance 0 on
// first reference. Concurrent first access is safe: the insert ignores
// the unique conflict and the follow-up read returns the winner's row.
// An unknown user gets ErrUserNotFound, never a ghost wallet.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID string) (*model.Wallet, error) {
	var users int64
	err := r.Write(ctx).WithContext(ctx).
		Model(&UserEntity{}).
		Where("id = ?", userID).
		Count(&users).
		Error
	if err != nil {
		return nil, err
	}
	if users == 0 {
		return nil, ErrUserNotFound
	}

	entity := &WalletEntity{
		ID:      uuid.NewString(),
		UserID:  userID,
		Balance: 0,
	}
	err = r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(entity).
		Error
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}

	var existing WalletEntity
	err = r.Write(ctx).WithContext(ctx).
		Where("user_id = ?", userID).
		First(&existing).
		Error
	if err != nil {
		return nil, err
	}
	return toWalletModel(&existing), nil
}

// LockForUpdate acquires an exclusive row lock on the user's wallet for
// the duration of the ambient transaction, creating the wallet first if
// it does not exist. This is the sole guard against lost updates on
// concurrent debits for the same user.
func (r *WalletRepository) LockForUpdate(ctx context.Context, userID string) (*model.Wallet, error) {
	var entity WalletEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&entity).
		Error
	if err == nil {
		return toWalletModel(&entity), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	err = r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return toWalletModel(&entity), nil
}

// Credit increments the balance. Amount validation happens before any
// row is touched.
func (r *WalletRepository) Credit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&WalletEntity{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// Debit decrements the balance, refusing to go negative. The guarded
// update backs up the application-level balance check, so even a
// caller that skipped LockForUpdate cannot drive the balance below
// zero.
func (r *WalletRepository) Debit(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&WalletEntity{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.checkDebitFailureReason(ctx, userID, amount)
	}
	return nil
}

// checkDebitFailureReason determines why the guarded update matched no
// rows.
func (r *WalletRepository) checkDebitFailureReason(ctx context.Context, userID string, amount int64) error {
	var entity WalletEntity
	err := r.Write(ctx).WithContext(ctx).
		Where("user_id = ?", userID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletNotFound
		}
		return err
	}
	if entity.Balance < amount {
		return ErrInsufficientFunds
	}
	// The row exists with enough balance, so a concurrent writer must
	// have interleaved between the update and this read.
	return errors.New("debit failed for unknown reason")
}

func (r *WalletRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var entity WalletEntity
	err := r.Read(ctx).WithContext(ctx).
		Select("balance").
		Where("user_id = ?", userID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrWalletNotFound
		}
		return 0, err
	}
	return entity.Balance, nil
}
