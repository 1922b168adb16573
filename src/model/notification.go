package model

import "time"

const (
	NotificationOrderFilled   = "ORDER_FILLED"
	NotificationOrderRejected = "ORDER_REJECTED"
	NotificationAlertFired    = "ALERT_FIRED"
)

// Notification is the engine-side record of an event a client should hear
// about. Delivery (email, push, UI toast) belongs to the presentation layer.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"index;not null" json:"account_id"`
	Kind      string    `gorm:"size:30;not null" json:"kind"`
	Symbol    string    `gorm:"size:20" json:"symbol,omitempty"`
	Message   string    `gorm:"size:512;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
