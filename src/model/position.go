package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is an account's holding in a single symbol. A position row only
// exists while quantity > 0; selling down to zero deletes it.
type Position struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AccountID uint            `gorm:"uniqueIndex:idx_positions_account_symbol;not null" json:"account_id"`
	Symbol    string          `gorm:"size:20;uniqueIndex:idx_positions_account_symbol;not null" json:"symbol"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	AvgCost   decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"avg_cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}
