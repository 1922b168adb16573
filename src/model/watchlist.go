package model

import "time"

// WatchlistEntry pins a symbol to an account's watchlist.
type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"uniqueIndex:idx_watchlist_account_symbol;not null" json:"account_id"`
	Symbol    string    `gorm:"size:20;uniqueIndex:idx_watchlist_account_symbol;not null" json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}
