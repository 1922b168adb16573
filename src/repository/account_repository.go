package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrade/src/database"
	"papertrade/src/model"
)

// AccountRepository handles read/write operations for accounts.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new repository instance using the main
// read/write database.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *AccountRepository) WithDB(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. The given account is updated with the
// generated ID and timestamps.
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "AccountRepository",
			"op":       "Create",
			"username": account.Username,
		}).WithError(err).Error("Failed to create account")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "AccountRepository",
		"op":         "Create",
		"account_id": account.ID,
	}).Info("Account created successfully")

	return nil
}

// FindByID fetches a single account by its primary ID.
// Returns (nil, nil) if the account is not found.
func (r *AccountRepository) FindByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account

	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "AccountRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch account by ID")

		return nil, err
	}

	return &account, nil
}

// FindByUsername fetches a single account by username.
// Returns (nil, nil) if the account is not found.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account

	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "AccountRepository",
			"op":       "FindByUsername",
			"username": username,
		}).WithError(err).Error("Failed to fetch account by username")

		return nil, err
	}

	return &account, nil
}

// Positions returns every open position for the account.
func (r *AccountRepository) Positions(ctx context.Context, accountID uint) ([]model.Position, error) {
	var positions []model.Position

	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("symbol ASC").
		Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "AccountRepository",
			"op":         "Positions",
			"account_id": accountID,
		}).WithError(err).Error("Failed to fetch positions")

		return nil, err
	}

	return positions, nil
}

// PositionQuantity returns the held quantity for (account, symbol), zero when
// no position exists.
func (r *AccountRepository) PositionQuantity(ctx context.Context, accountID uint, symbol string) (int64, error) {
	var position model.Position

	err := r.db.WithContext(ctx).
		Where("account_id = ? AND symbol = ?", accountID, symbol).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return position.Quantity, nil
}
