package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/repository"
)

var ErrInvalidAmount = errors.New("amount must be positive")

// WalletService owns balance reads and credits. Debits belong to the
// translation protocol and never go through here.
type WalletService struct {
	walletRepo      WalletRepository
	transactionRepo TransactionRepository
}

func NewWalletService(walletRepo WalletRepository, transactionRepo TransactionRepository) *WalletService {
	return &WalletService{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
	}
}

// GetBalance returns the user's balance, creating an empty wallet on
// first read.
func (s *WalletService) GetBalance(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.walletRepo.GetOrCreate(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("get wallet: %w", err)
	}
	return wallet.Balance, nil
}

// TopUp credits the wallet and records the matching ledger entry in one
// transaction. The wallet is locked for the whole mutation, so the
// returned balance is the locked balance plus the credit, with no
// re-read.
func (s *WalletService) TopUp(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var balance int64
	err := s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		wallet, err := s.walletRepo.LockForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock wallet: %w", err)
		}

		if err := s.walletRepo.Credit(ctx, userID, amount); err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}

		if _, err := s.transactionRepo.Create(ctx, &model.Transaction{
			UserID: userID,
			Amount: amount,
			Type:   model.TransactionTopup,
		}); err != nil {
			return fmt.Errorf("record topup: %w", err)
		}

		balance = wallet.Balance + amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// ApproveBonus is the admin grant path. It shares the TopUp code so a
// bonus shows up in the ledger exactly like a self-service topup.
func (s *WalletService) ApproveBonus(ctx context.Context, userID string, amount int64) (int64, error) {
	return s.TopUp(ctx, userID, amount)
}
