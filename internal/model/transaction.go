package model

import "time"

// TransactionType marks the direction of a ledger entry. Amounts are
// recorded as positive magnitudes for both directions.
type TransactionType string

const (
	TransactionTopup TransactionType = "topup"
	TransactionDebit TransactionType = "debit"
)

type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    int64           `json:"amount"`
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

// HistoryFilter controls the paginated history listings. Results are
// always returned newest first.
type HistoryFilter struct {
	UserID string
	Limit  int
	Offset int
}

const (
	HistoryDefaultLimit = 100
	HistoryMaxLimit     = 500
)

func (f HistoryFilter) Normalize() (HistoryFilter, error) {
	if f.Offset < 0 {
		return f, ErrInvalidPagination
	}
	if f.Limit == 0 {
		f.Limit = HistoryDefaultLimit
	}
	if f.Limit < 0 || f.Limit > HistoryMaxLimit {
		return f, ErrInvalidPagination
	}
	return f, nil
}
