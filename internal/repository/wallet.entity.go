package repository

import (
	"github.com/lexora/translation-gateway/internal/model"
)

type WalletEntity struct {
	ID      string      `db:"id"      gorm:"primaryKey;column:id"`
	UserID  string      `db:"user_id" gorm:"column:user_id;not null;unique"`
	User    *UserEntity `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Balance int64       `db:"balance" gorm:"column:balance;not null;default:0;check:balance >= 0"`
}

func (WalletEntity) TableName() string {
	return "wallets"
}

func toWalletModel(e *WalletEntity) *model.Wallet {
	if e == nil {
		return nil
	}
	return &model.Wallet{
		ID:      e.ID,
		UserID:  e.UserID,
		Balance: e.Balance,
	}
}
