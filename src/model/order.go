package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"
)

const (
	OrderKindMarket   = "MARKET"
	OrderKindLimit    = "LIMIT"
	OrderKindStop     = "STOP"
	OrderKindStopLoss = "STOP_LOSS"
)

const (
	OrderStatusPending = "PENDING"
	// OrderStatusClaimed reserves a pending order for exactly one execution
	// path. It is transient: every claimed order ends up FILLED or REJECTED
	// before the sweep that claimed it returns.
	OrderStatusClaimed   = "CLAIMED"
	OrderStatusFilled    = "FILLED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusRejected  = "REJECTED"
)

// Order is a trade instruction. MARKET orders resolve synchronously and are
// persisted already terminal; LIMIT/STOP/STOP_LOSS orders are created PENDING
// and wait for the trigger sweep. Terminal rows are immutable history.
type Order struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Ref         string           `gorm:"size:36;uniqueIndex;not null" json:"ref"`
	AccountID   uint             `gorm:"index;not null" json:"account_id"`
	Symbol      string           `gorm:"size:20;index;not null" json:"symbol"`
	Side        string           `gorm:"size:10;not null" json:"side"`
	Kind        string           `gorm:"size:20;not null" json:"kind"`
	Quantity    int64            `gorm:"not null" json:"quantity"`
	TargetPrice *decimal.Decimal `gorm:"type:numeric(20,4)" json:"target_price,omitempty"`
	Status      string           `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Reason      string           `gorm:"size:255" json:"reason,omitempty"`
	FillPrice   *decimal.Decimal `gorm:"type:numeric(20,4)" json:"fill_price,omitempty"`
	FilledAt    *time.Time       `json:"filled_at,omitempty"`
	ExpiresAt   *time.Time       `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Terminal reports whether the order has reached an immutable state.
func (o *Order) Terminal() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}
