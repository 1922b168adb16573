package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's cash balance. The balance is mutated only by the
// portfolio ledger; it must never go negative.
type Account struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Username    string          `gorm:"size:60;uniqueIndex;not null" json:"username"`
	Email       string          `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password    string          `gorm:"size:120;not null" json:"-"`
	CashBalance decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"cash_balance"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
