package executors

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"papertrade/src/model"
	"papertrade/src/notifier"
	"papertrade/src/quotefeed"
	"papertrade/src/repository"
)

// AlertSweep fires ACTIVE price alerts. Unlike the order sweep it is not
// gated by market hours: an alert is a watch, not a trade.
type AlertSweep struct {
	alerts   *repository.AlertRepository
	feed     quotefeed.Feed
	notifier *notifier.Notifier
	now      func() time.Time

	running sync.Mutex
}

func NewAlertSweep(alerts *repository.AlertRepository, feed quotefeed.Feed, n *notifier.Notifier) *AlertSweep {
	return &AlertSweep{
		alerts:   alerts,
		feed:     feed,
		notifier: n,
		now:      time.Now,
	}
}

// Start runs the sweep on the given cadence until ctx is cancelled.
func (s *AlertSweep) Start(ctx context.Context, period time.Duration) {
	logger.WithField("period", period.String()).Info("alert sweep started")

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("alert sweep stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *AlertSweep) tick(ctx context.Context) {
	if !s.running.TryLock() {
		logger.Warn("alert sweep still running, skipping tick")
		return
	}
	defer s.running.Unlock()

	if err := s.RunOnce(ctx); err != nil {
		logger.WithError(err).Error("alert sweep failed")
	}
}

// RunOnce performs a single alert sweep.
func (s *AlertSweep) RunOnce(ctx context.Context) error {
	active, err := s.alerts.FindAllActive(ctx)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(active))
	seen := make(map[string]struct{}, len(active))
	for i := range active {
		if _, ok := seen[active[i].Symbol]; ok {
			continue
		}
		seen[active[i].Symbol] = struct{}{}
		symbols = append(symbols, active[i].Symbol)
	}

	snapshot, err := s.feed.Snapshot(ctx, symbols)
	if err != nil {
		logger.WithError(err).Warn("quote feed unavailable, skipping alert sweep")
		return nil
	}

	for i := range active {
		alert := active[i]

		quote, ok := snapshot[alert.Symbol]
		if !ok {
			continue
		}

		if !alertTriggered(&alert, quote.Price) {
			continue
		}

		won, err := s.alerts.Fire(ctx, alert.ID, quote.Price, s.now())
		if err != nil {
			return err
		}
		if !won {
			// Already fired by a concurrent sweep; alerts never re-arm.
			continue
		}

		logger.WithFields(map[string]interface{}{
			"alert_id": alert.ID,
			"symbol":   alert.Symbol,
			"price":    quote.Price.String(),
		}).Info("alert fired")

		s.notifier.Notify(ctx, alert.AccountID, model.NotificationAlertFired, alert.Symbol,
			fmt.Sprintf("%s is %s target %s (current %s)",
				alert.Symbol, conditionWord(alert.Condition), alert.TargetPrice.StringFixed(2), quote.Price.StringFixed(2)))
	}

	return nil
}

func conditionWord(condition string) string {
	if condition == model.AlertConditionAbove {
		return "above"
	}
	return "below"
}
