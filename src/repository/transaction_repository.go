package repository

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrade/src/database"
	"papertrade/src/model"
)

// TransactionRepository reads the append-only transaction history. Writes go
// through the ledger only.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new repository instance using the main
// read/write database.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *TransactionRepository) WithDB(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// TransactionSearchOptions filters the account's history.
type TransactionSearchOptions struct {
	AccountID      uint
	Symbol         *string
	ExecutedAfter  *time.Time
	ExecutedBefore *time.Time
	Limit          int
	Offset         int
}

// Search returns the account's transactions newest first.
func (r *TransactionRepository) Search(ctx context.Context, options TransactionSearchOptions) ([]model.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ?", options.AccountID)

	if options.Symbol != nil {
		query = query.Where("symbol = ?", *options.Symbol)
	}
	if options.ExecutedAfter != nil {
		query = query.Where("executed_at >= ?", *options.ExecutedAfter)
	}
	if options.ExecutedBefore != nil {
		query = query.Where("executed_at <= ?", *options.ExecutedBefore)
	}

	query = query.Order("executed_at DESC, id DESC")

	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	var transactions []model.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "TransactionRepository",
			"op":         "Search",
			"account_id": options.AccountID,
		}).WithError(err).Error("Failed to search transactions")

		return nil, err
	}

	return transactions, nil
}

// SumCashDeltas totals every cash delta for the account. Together with the
// initial endowment it must reproduce the current cash balance.
func (r *TransactionRepository) SumCashDeltas(ctx context.Context, accountID uint) (string, error) {
	var total *string

	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("account_id = ?", accountID).
		Select("SUM(cash_delta)").
		Scan(&total).Error
	if err != nil {
		return "0", err
	}
	if total == nil {
		return "0", nil
	}
	return *total, nil
}
