// Package executors runs the scheduled trigger evaluators: the order sweep
// fills pending orders whose conditions hold, the alert sweep fires price
// alerts. Each sweep is single-flight: a tick arriving while the previous
// sweep is still executing is skipped, never queued.
package executors

import (
	"context"
	"errors"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"papertrade/src/engine"
	"papertrade/src/marketcalendar"
	"papertrade/src/model"
	"papertrade/src/quotefeed"
	"papertrade/src/repository"
)

// OrderSweep evaluates every PENDING order against a fresh snapshot and hands
// triggered orders to the execution engine.
type OrderSweep struct {
	orders   *repository.OrderRepository
	engine   *engine.Engine
	feed     quotefeed.Feed
	calendar *marketcalendar.Calendar
	now      func() time.Time

	running sync.Mutex
}

func NewOrderSweep(orders *repository.OrderRepository, eng *engine.Engine, feed quotefeed.Feed, calendar *marketcalendar.Calendar) *OrderSweep {
	return &OrderSweep{
		orders:   orders,
		engine:   eng,
		feed:     feed,
		calendar: calendar,
		now:      time.Now,
	}
}

// Start runs the sweep on the given cadence until ctx is cancelled.
func (s *OrderSweep) Start(ctx context.Context, period time.Duration) {
	logger.WithField("period", period.String()).Info("order sweep started")

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	// Run immediately on startup, then on every tick.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("order sweep stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *OrderSweep) tick(ctx context.Context) {
	if !s.running.TryLock() {
		// Previous sweep still executing; skipping bounds staleness instead
		// of growing a backlog.
		logger.Warn("order sweep still running, skipping tick")
		return
	}
	defer s.running.Unlock()

	if err := s.RunOnce(ctx); err != nil {
		logger.WithError(err).Error("order sweep failed")
	}
}

// RunOnce performs a single sweep. Feed failures skip the affected symbols
// for this tick and are retried on the next one; they never abort the sweep
// machinery.
func (s *OrderSweep) RunOnce(ctx context.Context) error {
	now := s.now()

	if _, err := s.orders.CancelExpired(ctx, now); err != nil {
		return err
	}

	if !s.calendar.CanTradeAt(now) {
		logger.Debug("market closed, order sweep idle")
		return nil
	}

	pending, err := s.orders.FindAllPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	logger.WithField("pending", len(pending)).Debug("evaluating pending orders")

	snapshot, err := s.feed.Snapshot(ctx, orderSymbols(pending))
	if err != nil {
		// PriceFeedUnavailable: nothing fills this tick, next tick retries.
		logger.WithError(err).Warn("quote feed unavailable, skipping sweep")
		return nil
	}

	for i := range pending {
		order := pending[i]

		quote, ok := snapshot[order.Symbol]
		if !ok {
			logger.WithField("symbol", order.Symbol).Debug("no quote for symbol, skipping order")
			continue
		}

		if !orderTriggered(&order, quote.Price) {
			continue
		}

		// A tick can arrive at the boundary of close; re-check before the
		// fill so the claim never happens after hours.
		if !s.calendar.CanTradeAt(s.now()) {
			logger.Info("market closed mid-sweep, stopping fills")
			return nil
		}

		won, err := s.orders.ClaimPending(ctx, order.ID)
		if err != nil {
			return err
		}
		if !won {
			// Another sweep or a user cancel got there first; expected.
			continue
		}
		order.Status = model.OrderStatusClaimed

		if _, err := s.engine.ExecuteClaimed(ctx, &order, quote.Price); err != nil {
			if errors.Is(err, model.ErrInsufficientFunds) ||
				errors.Is(err, model.ErrInsufficientHoldings) ||
				errors.Is(err, model.ErrNotFound) {
				// Recorded as REJECTED by the engine; the sweep moves on.
				continue
			}
			return err
		}
	}

	return nil
}

func orderSymbols(orders []model.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	symbols := make([]string, 0, len(orders))
	for i := range orders {
		if _, ok := seen[orders[i].Symbol]; ok {
			continue
		}
		seen[orders[i].Symbol] = struct{}{}
		symbols = append(symbols, orders[i].Symbol)
	}
	return symbols
}
