package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrade/src/database"
	"papertrade/src/model"
)

// OrderRepository handles read/write operations for orders. Every status
// transition is a compare-and-swap on the current status, so a losing writer
// sees zero affected rows instead of silently overwriting.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new repository instance using the main
// read/write database.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *OrderRepository) WithDB(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order. The given order is updated with the generated
// ID and timestamps.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "OrderRepository",
		"op":     "Create",
		"symbol": order.Symbol,
		"side":   order.Side,
		"kind":   order.Kind,
		"qty":    order.Quantity,
	}).Debug("Creating new order")

	err := r.db.WithContext(ctx).Create(order).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create order")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "Create",
		"order_id": order.ID,
	}).Info("Order created successfully")

	return nil
}

// FindByID fetches a single order by its primary ID.
// Returns (nil, nil) if the order is not found.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order

	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch order by ID")

		return nil, err
	}

	return &order, nil
}

// FindByRefAndAccount fetches an order by its public reference, scoped to the
// owning account. Returns (nil, nil) if the order is not found.
func (r *OrderRepository) FindByRefAndAccount(ctx context.Context, accountID uint, ref string) (*model.Order, error) {
	var order model.Order

	err := r.db.WithContext(ctx).
		Where("ref = ? AND account_id = ?", ref, accountID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":       "OrderRepository",
			"op":         "FindByRefAndAccount",
			"account_id": accountID,
			"ref":        ref,
		}).WithError(err).Error("Failed to fetch order by ref")

		return nil, err
	}

	return &order, nil
}

// FindPendingByAccount returns the account's PENDING orders, newest first.
func (r *OrderRepository) FindPendingByAccount(ctx context.Context, accountID uint) ([]model.Order, error) {
	var orders []model.Order

	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, model.OrderStatusPending).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "OrderRepository",
			"op":         "FindPendingByAccount",
			"account_id": accountID,
		}).WithError(err).Error("Failed to fetch pending orders")

		return nil, err
	}

	return orders, nil
}

// FindAllPending returns every PENDING order across all accounts, oldest
// first so earlier orders fill first within an account.
func (r *OrderRepository) FindAllPending(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order

	err := r.db.WithContext(ctx).
		Where("status = ?", model.OrderStatusPending).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "FindAllPending",
		}).WithError(err).Error("Failed to fetch pending orders for sweep")

		return nil, err
	}

	return orders, nil
}

// ClaimPending atomically transitions the order PENDING -> CLAIMED. The
// returned bool reports whether this caller won the claim; losing is expected
// under concurrent sweeps or a racing cancel, not an error.
func (r *OrderRepository) ClaimPending(ctx context.Context, orderID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Update("status", model.OrderStatusClaimed)
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "ClaimPending",
			"order_id": orderID,
		}).WithError(res.Error).Error("Failed to claim order")

		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}

// MarkFilled transitions a CLAIMED order to FILLED with its fill price.
func (r *OrderRepository) MarkFilled(ctx context.Context, orderID uint, fillPrice decimal.Decimal, filledAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusClaimed).
		Updates(map[string]interface{}{
			"status":     model.OrderStatusFilled,
			"fill_price": fillPrice,
			"filled_at":  filledAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrConcurrentModification
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "OrderRepository",
		"op":         "MarkFilled",
		"order_id":   orderID,
		"fill_price": fillPrice.String(),
	}).Info("Order filled")

	return nil
}

// MarkRejected transitions a CLAIMED order to REJECTED with the recorded
// reason.
func (r *OrderRepository) MarkRejected(ctx context.Context, orderID uint, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusClaimed).
		Updates(map[string]interface{}{
			"status": model.OrderStatusRejected,
			"reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrConcurrentModification
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "MarkRejected",
		"order_id": orderID,
		"reason":   reason,
	}).Info("Order rejected")

	return nil
}

// CancelPending transitions PENDING -> CANCELLED. When the order has already
// been claimed by a running sweep the caller gets ErrConcurrentModification
// so it can refresh state instead of assuming success; terminal orders return
// ErrNotPending.
func (r *OrderRepository) CancelPending(ctx context.Context, orderID uint, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status": model.OrderStatusCancelled,
			"reason": reason,
		})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "CancelPending",
			"order_id": orderID,
		}).WithError(res.Error).Error("Failed to cancel order")

		return res.Error
	}

	if res.RowsAffected == 1 {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "CancelPending",
			"order_id": orderID,
		}).Info("Order cancelled")

		return nil
	}

	// Lost the race; re-read to tell the caller which race it lost.
	order, err := r.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return model.ErrNotFound
	}
	if order.Status == model.OrderStatusClaimed {
		return model.ErrConcurrentModification
	}
	return model.ErrNotPending
}

// CancelExpired transitions every PENDING order whose expiry has passed to
// CANCELLED. Returns the number of orders cancelled.
func (r *OrderRepository) CancelExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.OrderStatusPending, now).
		Updates(map[string]interface{}{
			"status": model.OrderStatusCancelled,
			"reason": "expired",
		})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "CancelExpired",
		}).WithError(res.Error).Error("Failed to cancel expired orders")

		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		logger.WithFields(map[string]interface{}{
			"repo":      "OrderRepository",
			"op":        "CancelExpired",
			"cancelled": res.RowsAffected,
		}).Info("Expired orders cancelled")
	}

	return res.RowsAffected, nil
}
