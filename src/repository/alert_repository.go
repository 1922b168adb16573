package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrade/src/database"
	"papertrade/src/model"
)

// AlertRepository handles read/write operations for price alerts.
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository creates a new repository instance using the main
// read/write database.
func NewAlertRepository() *AlertRepository {
	return &AlertRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *AlertRepository) WithDB(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	err := r.db.WithContext(ctx).Create(alert).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "AlertRepository",
			"op":     "Create",
			"symbol": alert.Symbol,
		}).WithError(err).Error("Failed to create alert")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "AlertRepository",
		"op":       "Create",
		"alert_id": alert.ID,
	}).Info("Alert created successfully")

	return nil
}

// FindActiveByAccount returns the account's ACTIVE alerts, newest first.
func (r *AlertRepository) FindActiveByAccount(ctx context.Context, accountID uint) ([]model.Alert, error) {
	var alerts []model.Alert

	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, model.AlertStatusActive).
		Order("created_at DESC, id DESC").
		Find(&alerts).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "AlertRepository",
			"op":         "FindActiveByAccount",
			"account_id": accountID,
		}).WithError(err).Error("Failed to fetch active alerts")

		return nil, err
	}

	return alerts, nil
}

// FindAllActive returns every ACTIVE alert across all accounts.
func (r *AlertRepository) FindAllActive(ctx context.Context) ([]model.Alert, error) {
	var alerts []model.Alert

	err := r.db.WithContext(ctx).
		Where("status = ?", model.AlertStatusActive).
		Order("id ASC").
		Find(&alerts).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "AlertRepository",
			"op":   "FindAllActive",
		}).WithError(err).Error("Failed to fetch active alerts for sweep")

		return nil, err
	}

	return alerts, nil
}

// Fire atomically transitions ACTIVE -> FIRED recording the firing price.
// The returned bool reports whether this caller won the transition; a fired
// alert never re-arms.
func (r *AlertRepository) Fire(ctx context.Context, alertID uint, price decimal.Decimal, firedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Alert{}).
		Where("id = ? AND status = ?", alertID, model.AlertStatusActive).
		Updates(map[string]interface{}{
			"status":      model.AlertStatusFired,
			"fired_price": price,
			"fired_at":    firedAt,
		})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "AlertRepository",
			"op":       "Fire",
			"alert_id": alertID,
		}).WithError(res.Error).Error("Failed to fire alert")

		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}

// Delete removes an alert by reference, scoped to the owning account.
// Returns ErrNotFound when nothing matched.
func (r *AlertRepository) Delete(ctx context.Context, accountID uint, ref string) error {
	res := r.db.WithContext(ctx).
		Where("ref = ? AND account_id = ?", ref, accountID).
		Delete(&model.Alert{})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "AlertRepository",
			"op":         "Delete",
			"account_id": accountID,
			"ref":        ref,
		}).WithError(res.Error).Error("Failed to delete alert")

		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "AlertRepository",
		"op":         "Delete",
		"account_id": accountID,
		"ref":        ref,
	}).Info("Alert deleted")

	return nil
}
