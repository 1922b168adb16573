// Package engine executes claimed orders against the portfolio ledger. The
// trigger price is the fill price; the engine never re-fetches a second
// snapshot between trigger and execution, which keeps fills deterministic.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"papertrade/src/ledger"
	"papertrade/src/model"
	"papertrade/src/repository"
)

type eventNotifier interface {
	Notify(ctx context.Context, accountID uint, kind, symbol, message string)
}

// Engine turns a claimed order into a fill or a rejection. Exactly one claim
// precedes each call, so the ledger apply runs at most once per order.
type Engine struct {
	logger   *logrus.Entry
	orders   *repository.OrderRepository
	ledger   *ledger.Ledger
	notifier eventNotifier
	fee      decimal.Decimal
	now      func() time.Time
}

func New(logger *logrus.Entry, orders *repository.OrderRepository, book *ledger.Ledger, notifier eventNotifier, fee decimal.Decimal) *Engine {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Engine{
		logger:   logger,
		orders:   orders,
		ledger:   book,
		notifier: notifier,
		fee:      fee,
		now:      time.Now,
	}
}

// ExecuteClaimed fills a claimed pending order at the trigger price. Funds
// and holdings are re-validated inside the ledger at fill time; a validation
// failure transitions the order to REJECTED with the recorded reason, never
// to a partial fill.
func (e *Engine) ExecuteClaimed(ctx context.Context, order *model.Order, price decimal.Decimal) (*model.Transaction, error) {
	if order.Status != model.OrderStatusClaimed {
		return nil, fmt.Errorf("order %d is %s, expected %s", order.ID, order.Status, model.OrderStatusClaimed)
	}
	return e.fill(ctx, order, price)
}

// ExecuteMarket runs the synchronous market-order path: the order is
// persisted already claimed (it never exists as PENDING) and filled at the
// live snapshot price. On a validation failure the caller receives the
// domain error and the order row records the rejection.
func (e *Engine) ExecuteMarket(ctx context.Context, accountID uint, symbol, side string, qty int64, price decimal.Decimal) (*model.Order, *model.Transaction, error) {
	order := &model.Order{
		Ref:       uuid.NewString(),
		AccountID: accountID,
		Symbol:    symbol,
		Side:      side,
		Kind:      model.OrderKindMarket,
		Quantity:  qty,
		Status:    model.OrderStatusClaimed,
	}

	if err := e.orders.Create(ctx, order); err != nil {
		return nil, nil, err
	}

	txn, err := e.fill(ctx, order, price)
	if err != nil {
		return order, nil, err
	}
	return order, txn, nil
}

func (e *Engine) fill(ctx context.Context, order *model.Order, price decimal.Decimal) (*model.Transaction, error) {
	executedAt := e.now()

	// The status transition runs inside the ledger's transaction so a failed
	// CLAIMED->FILLED swap rolls the cash movement back with it; an order can
	// never end up claimed forever with the money already moved.
	markFilled := func(tx *gorm.DB) error {
		return e.orders.WithDB(tx).MarkFilled(ctx, order.ID, price, executedAt)
	}

	var (
		txn *model.Transaction
		err error
	)
	switch order.Side {
	case model.OrderSideBuy:
		txn, err = e.ledger.ApplyBuy(ctx, order.AccountID, &order.ID, order.Symbol, order.Quantity, price, e.fee, executedAt, markFilled)
	case model.OrderSideSell:
		txn, err = e.ledger.ApplySell(ctx, order.AccountID, &order.ID, order.Symbol, order.Quantity, price, e.fee, executedAt, markFilled)
	default:
		err = fmt.Errorf("unknown order side %q", order.Side)
	}

	if err != nil {
		if isValidationError(err) {
			if markErr := e.orders.MarkRejected(ctx, order.ID, err.Error()); markErr != nil {
				return nil, markErr
			}
			order.Status = model.OrderStatusRejected
			order.Reason = err.Error()

			e.logger.WithFields(logrus.Fields{
				"order_id": order.ID,
				"symbol":   order.Symbol,
				"side":     order.Side,
				"reason":   err.Error(),
			}).Warn("order rejected at fill time")

			e.notifier.Notify(ctx, order.AccountID, model.NotificationOrderRejected, order.Symbol,
				fmt.Sprintf("%s %s order for %d %s rejected: %s", order.Kind, order.Side, order.Quantity, order.Symbol, err.Error()))

			return nil, err
		}

		// Infrastructure or invariant failure, or a lost status race: the
		// whole transaction rolled back, so no cash moved and no transaction
		// row exists.
		e.logger.WithError(err).WithField("order_id", order.ID).Error("fill aborted")
		return nil, err
	}

	order.Status = model.OrderStatusFilled
	order.FillPrice = &price
	order.FilledAt = &executedAt

	e.logger.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"symbol":     order.Symbol,
		"side":       order.Side,
		"qty":        order.Quantity,
		"fill_price": price.String(),
	}).Info("order filled")

	e.notifier.Notify(ctx, order.AccountID, model.NotificationOrderFilled, order.Symbol,
		fmt.Sprintf("%s %s order filled: %d %s @ %s", order.Kind, order.Side, order.Quantity, order.Symbol, price.StringFixed(2)))

	return txn, nil
}

func isValidationError(err error) bool {
	return errors.Is(err, model.ErrInsufficientFunds) ||
		errors.Is(err, model.ErrInsufficientHoldings) ||
		errors.Is(err, model.ErrInvalidQuantity) ||
		errors.Is(err, model.ErrNotFound)
}
