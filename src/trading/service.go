// Package trading is the request/response surface of the order engine:
// admission gating, market orders, pending orders, alerts and market status.
package trading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrade/src/engine"
	"papertrade/src/marketcalendar"
	"papertrade/src/model"
	"papertrade/src/quotefeed"
	"papertrade/src/repository"
)

// Service wires the calendar gate, quote feed, order book and execution
// engine behind the operations the presentation layer calls.
type Service struct {
	logger   *logrus.Entry
	accounts *repository.AccountRepository
	orders   *repository.OrderRepository
	alerts   *repository.AlertRepository
	engine   *engine.Engine
	feed     quotefeed.Feed
	calendar *marketcalendar.Calendar
	cfg      Config
	now      func() time.Time
}

func NewService(
	logger *logrus.Entry,
	accounts *repository.AccountRepository,
	orders *repository.OrderRepository,
	alerts *repository.AlertRepository,
	eng *engine.Engine,
	feed quotefeed.Feed,
	calendar *marketcalendar.Calendar,
	cfg Config,
) *Service {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Service{
		logger:   logger,
		accounts: accounts,
		orders:   orders,
		alerts:   alerts,
		engine:   eng,
		feed:     feed,
		calendar: calendar,
		cfg:      cfg,
		now:      time.Now,
	}
}

// MarketStatus reports the current session state and next open.
func (s *Service) MarketStatus() marketcalendar.MarketState {
	return s.calendar.StateAt(s.now())
}

// BuyNow executes a synchronous market buy at the live snapshot price.
func (s *Service) BuyNow(ctx context.Context, accountID uint, symbol string, qty int64) (*model.Transaction, error) {
	return s.marketOrder(ctx, accountID, symbol, model.OrderSideBuy, qty)
}

// SellNow executes a synchronous market sell at the live snapshot price.
func (s *Service) SellNow(ctx context.Context, accountID uint, symbol string, qty int64) (*model.Transaction, error) {
	return s.marketOrder(ctx, accountID, symbol, model.OrderSideSell, qty)
}

func (s *Service) marketOrder(ctx context.Context, accountID uint, symbol, side string, qty int64) (*model.Transaction, error) {
	symbol = normalizeSymbol(symbol)

	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	if symbol == "" {
		return nil, model.ErrNotFound
	}
	if !s.calendar.CanTradeAt(s.now()) {
		return nil, model.ErrMarketClosed
	}

	quote, err := s.quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	_, txn, err := s.engine.ExecuteMarket(ctx, accountID, symbol, side, qty, quote.Price)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// PlaceOrderRequest is the admission form for placeOrder.
type PlaceOrderRequest struct {
	Symbol      string
	Side        string
	Kind        string
	Quantity    int64
	TargetPrice *decimal.Decimal
}

// PlaceOrder admits an order. MARKET orders resolve synchronously through
// the execution engine; LIMIT/STOP orders are queued PENDING for the trigger
// sweep. Pending orders may be created outside market hours when queuing is
// enabled; they still only execute while the market is open.
func (s *Service) PlaceOrder(ctx context.Context, accountID uint, req PlaceOrderRequest) (*model.Order, error) {
	req.Symbol = normalizeSymbol(req.Symbol)

	if req.Quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}
	if req.Symbol == "" {
		return nil, model.ErrNotFound
	}
	if req.Side != model.OrderSideBuy && req.Side != model.OrderSideSell {
		return nil, fmt.Errorf("%w: unknown side %q", model.ErrInvalidQuantity, req.Side)
	}

	if req.Kind == model.OrderKindMarket {
		// Target price is what distinguishes a triggered order; accepting one
		// here and ignoring it would mislead the caller.
		if req.TargetPrice != nil {
			return nil, fmt.Errorf("%w: market orders take no target price", model.ErrInvalidPrice)
		}
		if !s.calendar.CanTradeAt(s.now()) {
			return nil, model.ErrMarketClosed
		}
		quote, err := s.quote(ctx, req.Symbol)
		if err != nil {
			return nil, err
		}
		order, _, err := s.engine.ExecuteMarket(ctx, accountID, req.Symbol, req.Side, req.Quantity, quote.Price)
		if err != nil {
			return order, err
		}
		return order, nil
	}

	switch req.Kind {
	case model.OrderKindLimit, model.OrderKindStop, model.OrderKindStopLoss:
	default:
		return nil, fmt.Errorf("%w: unknown order kind %q", model.ErrInvalidPrice, req.Kind)
	}

	if req.TargetPrice == nil || !req.TargetPrice.IsPositive() {
		return nil, model.ErrInvalidPrice
	}

	if !s.calendar.CanTradeAt(s.now()) && !s.cfg.AllowQueueOffHours {
		return nil, model.ErrMarketClosed
	}

	// A sell needs the shares at admission time. Holdings can still change
	// before the trigger fires, so the fill re-validates through the ledger.
	if req.Side == model.OrderSideSell {
		held, err := s.accounts.PositionQuantity(ctx, accountID, req.Symbol)
		if err != nil {
			return nil, err
		}
		if held < req.Quantity {
			return nil, model.ErrInsufficientHoldings
		}
	}

	expiresAt := s.now().Add(s.cfg.OrderTTL)
	order := &model.Order{
		Ref:         uuid.NewString(),
		AccountID:   accountID,
		Symbol:      req.Symbol,
		Side:        req.Side,
		Kind:        req.Kind,
		Quantity:    req.Quantity,
		TargetPrice: req.TargetPrice,
		Status:      model.OrderStatusPending,
		ExpiresAt:   &expiresAt,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"order_ref":  order.Ref,
		"symbol":     order.Symbol,
		"kind":       order.Kind,
		"side":       order.Side,
		"target":     req.TargetPrice.String(),
	}).Info("pending order admitted")

	return order, nil
}

// CancelOrder moves a PENDING order to CANCELLED. An order already picked up
// by the running sweep surfaces ErrConcurrentModification so the caller can
// refresh instead of assuming success.
func (s *Service) CancelOrder(ctx context.Context, accountID uint, ref string) error {
	order, err := s.orders.FindByRefAndAccount(ctx, accountID, ref)
	if err != nil {
		return err
	}
	if order == nil {
		return model.ErrNotFound
	}
	return s.orders.CancelPending(ctx, order.ID, "cancelled by user")
}

// ListPendingOrders returns the account's open orders, newest first.
func (s *Service) ListPendingOrders(ctx context.Context, accountID uint) ([]model.Order, error) {
	return s.orders.FindPendingByAccount(ctx, accountID)
}

// CreateAlert registers a side-effect-free price watch.
func (s *Service) CreateAlert(ctx context.Context, accountID uint, symbol, condition string, targetPrice decimal.Decimal) (*model.Alert, error) {
	symbol = normalizeSymbol(symbol)
	condition = strings.ToUpper(strings.TrimSpace(condition))

	if symbol == "" {
		return nil, model.ErrNotFound
	}
	if condition != model.AlertConditionAbove && condition != model.AlertConditionBelow {
		return nil, fmt.Errorf("%w: unknown condition %q", model.ErrInvalidPrice, condition)
	}
	if !targetPrice.IsPositive() {
		return nil, model.ErrInvalidPrice
	}

	alert := &model.Alert{
		Ref:         uuid.NewString(),
		AccountID:   accountID,
		Symbol:      symbol,
		Condition:   condition,
		TargetPrice: targetPrice,
		Status:      model.AlertStatusActive,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// DeleteAlert removes an alert by reference.
func (s *Service) DeleteAlert(ctx context.Context, accountID uint, ref string) error {
	return s.alerts.Delete(ctx, accountID, ref)
}

// ListAlerts returns the account's ACTIVE alerts.
func (s *Service) ListAlerts(ctx context.Context, accountID uint) ([]model.Alert, error) {
	return s.alerts.FindActiveByAccount(ctx, accountID)
}

func (s *Service) quote(ctx context.Context, symbol string) (quotefeed.Quote, error) {
	snapshot, err := s.feed.Snapshot(ctx, []string{symbol})
	if err != nil {
		return quotefeed.Quote{}, fmt.Errorf("%w: %v", quotefeed.ErrUnavailable, err)
	}

	quote, ok := snapshot[symbol]
	if !ok {
		return quotefeed.Quote{}, fmt.Errorf("%w: symbol %q", model.ErrNotFound, symbol)
	}
	return quote, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
