package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AlertConditionAbove = "ABOVE"
	AlertConditionBelow = "BELOW"
)

const (
	AlertStatusActive = "ACTIVE"
	AlertStatusFired  = "FIRED"
)

// Alert is a side-effect-free price watch. Firing only records a
// notification; no funds or positions move. FIRED is terminal, alerts do not
// re-arm.
type Alert struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Ref         string           `gorm:"size:36;uniqueIndex;not null" json:"ref"`
	AccountID   uint             `gorm:"index;not null" json:"account_id"`
	Symbol      string           `gorm:"size:20;index;not null" json:"symbol"`
	Condition   string           `gorm:"size:10;not null" json:"condition"`
	TargetPrice decimal.Decimal  `gorm:"type:numeric(20,4);not null" json:"target_price"`
	Status      string           `gorm:"size:20;not null;default:ACTIVE;index" json:"status"`
	FiredPrice  *decimal.Decimal `gorm:"type:numeric(20,4)" json:"fired_price,omitempty"`
	FiredAt     *time.Time       `json:"fired_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
