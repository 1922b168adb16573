// Package notifier records engine events and pushes them to live websocket
// subscribers. It is the only side effect of an alert firing; actual delivery
// channels (email, push) belong to the presentation layer.
package notifier

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"papertrade/src/model"
)

type notificationStore interface {
	Create(ctx context.Context, notification *model.Notification) error
}

type Notifier struct {
	store notificationStore
	hub   *Hub
	now   func() time.Time
}

func New(store notificationStore, hub *Hub) *Notifier {
	return &Notifier{store: store, hub: hub, now: time.Now}
}

// Notify persists the notification and broadcasts it. A persistence failure
// is logged but does not abort the caller's operation; the fill or alert
// transition it describes has already committed.
func (n *Notifier) Notify(ctx context.Context, accountID uint, kind, symbol, message string) {
	record := &model.Notification{
		AccountID: accountID,
		Kind:      kind,
		Symbol:    symbol,
		Message:   message,
	}

	if err := n.store.Create(ctx, record); err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"component":  "notifier",
			"account_id": accountID,
			"kind":       kind,
		}).Error("failed to persist notification")
	}

	if n.hub != nil {
		n.hub.Publish(Event{
			AccountID: accountID,
			Kind:      kind,
			Symbol:    symbol,
			Message:   message,
			At:        n.now(),
		})
	}
}
