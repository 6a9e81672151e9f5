package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/repository"
	"github.com/lexora/translation-gateway/internal/translator"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds for translation")
	ErrUserNotFound      = errors.New("user not found")
	ErrNotFound          = errors.New("record not found")
)

type TranslationRepository interface {
	Create(ctx context.Context, t *model.Translation) (*model.Translation, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Translation, error)
	List(ctx context.Context, f model.HistoryFilter) ([]*model.Translation, int64, error)
}

type WalletRepository interface {
	LockForUpdate(ctx context.Context, userID string) (*model.Wallet, error)
	Credit(ctx context.Context, userID string, amount int64) error
	Debit(ctx context.Context, userID string, amount int64) error
	GetOrCreate(ctx context.Context, userID string) (*model.Wallet, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	List(ctx context.Context, f model.HistoryFilter) ([]*model.Transaction, int64, error)
}

// TranslationConfig tunes the per-request charge and the translator
// call budget. LenientDebit switches insufficient-funds handling from
// refusal to translate-without-charge; no shipped entry point enables
// it.
type TranslationConfig struct {
	Cost         int64
	Timeout      time.Duration
	LenientDebit bool
}

// TranslationService charges a wallet and records history for every
// translation, atomically. Process is the single entry point for the
// synchronous API path and the queue worker.
type TranslationService struct {
	translationRepo TranslationRepository
	walletRepo      WalletRepository
	transactionRepo TransactionRepository
	translator      translator.Translator
	cost            int64
	timeout         time.Duration
	lenientDebit    bool
}

func NewTranslationService(translationRepo TranslationRepository, walletRepo WalletRepository, transactionRepo TransactionRepository, tr translator.Translator, config TranslationConfig) *TranslationService {
	if config.Cost <= 0 {
		config.Cost = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &TranslationService{
		translationRepo: translationRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		translator:      tr,
		cost:            config.Cost,
		timeout:         config.Timeout,
		lenientDebit:    config.LenientDebit,
	}
}

// Process runs the full charge-and-translate protocol:
//
//  1. normalize the request
//  2. replay the stored record if the external id was seen before
//  3. in one transaction: lock the wallet, check the balance, call the
//     translator, debit, and write the ledger and history rows
//
// A translator failure rolls back the debit; a balance shortfall stops
// before the translator is called. Concurrent deliveries of the same
// external id collapse to one stored record, everyone sees the same
// result.
func (s *TranslationService) Process(ctx context.Context, req model.TranslateRequest) (*model.Translation, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	if req.ExternalID != "" {
		existing, err := s.translationRepo.GetByExternalID(ctx, req.ExternalID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
	}

	var created *model.Translation
	err = s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		wallet, err := s.walletRepo.LockForUpdate(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrWalletNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock wallet: %w", err)
		}

		charge := wallet.Balance >= s.cost
		if !charge && !s.lenientDebit {
			return ErrInsufficientFunds
		}

		output, err := s.translate(ctx, req)
		if err != nil {
			return err
		}

		record := &model.Translation{
			UserID:     req.UserID,
			InputText:  req.InputText,
			OutputText: output,
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
		}
		// Every record carries an external id so it stays addressable;
		// synchronous callers that sent none get a generated one.
		externalID := req.ExternalID
		if externalID == "" {
			externalID = uuid.NewString()
		}
		record.ExternalID = &externalID

		if charge {
			if err := s.walletRepo.Debit(ctx, req.UserID, s.cost); err != nil {
				if errors.Is(err, repository.ErrInsufficientFunds) {
					return ErrInsufficientFunds
				}
				return fmt.Errorf("debit wallet: %w", err)
			}
			if _, err := s.transactionRepo.Create(ctx, &model.Transaction{
				UserID: req.UserID,
				Amount: s.cost,
				Type:   model.TransactionDebit,
			}); err != nil {
				return fmt.Errorf("record debit: %w", err)
			}
			cost := s.cost
			record.Cost = &cost
		}

		created, err = s.translationRepo.Create(ctx, record)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		// A concurrent delivery of the same external id committed first.
		// Its record is the answer, the rolled-back debit never happened.
		if errors.Is(err, repository.ErrDuplicateExternal) && req.ExternalID != "" {
			return s.translationRepo.GetByExternalID(ctx, req.ExternalID)
		}
		return nil, err
	}
	return created, nil
}

func (s *TranslationService) translate(ctx context.Context, req model.TranslateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.translator.Translate(ctx, req.InputText, req.SourceLang, req.TargetLang)
}

// GetByExternalID exposes the idempotency lookup for task status checks.
func (s *TranslationService) GetByExternalID(ctx context.Context, externalID string) (*model.Translation, error) {
	t, err := s.translationRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}
