package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrade/src/database"
	"papertrade/src/model"
)

// NotificationRepository persists engine notifications.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new repository instance using the main
// read/write database.
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *NotificationRepository) WithDB(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification record.
func (r *NotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	err := r.db.WithContext(ctx).Create(notification).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "NotificationRepository",
			"op":         "Create",
			"account_id": notification.AccountID,
			"kind":       notification.Kind,
		}).WithError(err).Error("Failed to create notification")
		return err
	}
	return nil
}

// FindByAccount returns the account's notifications newest first.
func (r *NotificationRepository) FindByAccount(ctx context.Context, accountID uint, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var notifications []model.Notification

	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "NotificationRepository",
			"op":         "FindByAccount",
			"account_id": accountID,
		}).WithError(err).Error("Failed to fetch notifications")

		return nil, err
	}

	return notifications, nil
}
