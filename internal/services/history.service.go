package services

import (
	"context"

	"github.com/lexora/translation-gateway/internal/model"
)

// HistoryService serves the read-only listings. Both repositories
// return newest first; pagination is validated at the filter.
type HistoryService struct {
	translationRepo TranslationRepository
	transactionRepo TransactionRepository
}

func NewHistoryService(translationRepo TranslationRepository, transactionRepo TransactionRepository) *HistoryService {
	return &HistoryService{
		translationRepo: translationRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *HistoryService) ListTranslations(ctx context.Context, f model.HistoryFilter) ([]*model.Translation, int64, error) {
	return s.translationRepo.List(ctx, f)
}

func (s *HistoryService) ListTransactions(ctx context.Context, f model.HistoryFilter) ([]*model.Transaction, int64, error) {
	return s.transactionRepo.List(ctx, f)
}
