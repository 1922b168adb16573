package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the append-only record of an executed fill. Rows are never
// mutated; the sum of cash deltas plus the initial endowment must equal the
// account's current cash balance at all times.
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Ref        string          `gorm:"size:36;uniqueIndex;not null" json:"ref"`
	AccountID  uint            `gorm:"index;not null" json:"account_id"`
	OrderID    *uint           `gorm:"index" json:"order_id,omitempty"`
	Symbol     string          `gorm:"size:20;not null" json:"symbol"`
	Side       string          `gorm:"size:10;not null" json:"side"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"price"`
	Fee        decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"fee"`
	CashDelta  decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"cash_delta"`
	ExecutedAt time.Time       `gorm:"index;not null" json:"executed_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
