package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrade/src/database"
	"papertrade/src/model"
)

// WatchlistRepository handles per-account watchlist symbols.
type WatchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new repository instance using the main
// read/write database.
func NewWatchlistRepository() *WatchlistRepository {
	return &WatchlistRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *WatchlistRepository) WithDB(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add pins a symbol to the account's watchlist. Adding a symbol twice is a
// no-op.
func (r *WatchlistRepository) Add(ctx context.Context, accountID uint, symbol string) error {
	entry := model.WatchlistEntry{AccountID: accountID, Symbol: symbol}

	err := r.db.WithContext(ctx).Create(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":       "WatchlistRepository",
			"op":         "Add",
			"account_id": accountID,
			"symbol":     symbol,
		}).WithError(err).Error("Failed to add watchlist entry")

		return err
	}

	return nil
}

// Remove unpins a symbol. Returns ErrNotFound when the symbol was not pinned.
func (r *WatchlistRepository) Remove(ctx context.Context, accountID uint, symbol string) error {
	res := r.db.WithContext(ctx).
		Where("account_id = ? AND symbol = ?", accountID, symbol).
		Delete(&model.WatchlistEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// List returns the account's watchlist symbols in alphabetical order.
func (r *WatchlistRepository) List(ctx context.Context, accountID uint) ([]string, error) {
	var symbols []string

	err := r.db.WithContext(ctx).
		Model(&model.WatchlistEntry{}).
		Where("account_id = ?", accountID).
		Order("symbol ASC").
		Pluck("symbol", &symbols).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "WatchlistRepository",
			"op":         "List",
			"account_id": accountID,
		}).WithError(err).Error("Failed to list watchlist")

		return nil, err
	}

	return symbols, nil
}
