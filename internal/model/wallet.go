package model

type Wallet struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

func (Wallet) TableName() string { return "wallets" }
