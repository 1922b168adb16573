package executors

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"papertrade/src/model"
)

func (f *sweepFixture) seedAlert(t *testing.T, accountID uint, symbol, condition, target string) *model.Alert {
	t.Helper()

	alert := &model.Alert{
		Ref:         uuid.NewString(),
		AccountID:   accountID,
		Symbol:      symbol,
		Condition:   condition,
		TargetPrice: decimal.RequireFromString(target),
		Status:      model.AlertStatusActive,
	}
	require.NoError(t, f.db.Create(alert).Error)
	return alert
}

func TestAlertSweepFiresOnce(t *testing.T) {
	f := newSweepFixture(t)
	account := f.seedAccount(t, "10000")
	alert := f.seedAlert(t, account.ID, "TCS", model.AlertConditionAbove, "3100")

	f.feed.SetPrice("TCS", decimal.RequireFromString("3150"))

	ctx := context.Background()
	require.NoError(t, f.alerting.RunOnce(ctx))

	var reloaded model.Alert
	require.NoError(t, f.db.First(&reloaded, alert.ID).Error)
	require.Equal(t, model.AlertStatusFired, reloaded.Status)
	require.NotNil(t, reloaded.FiredPrice)
	require.True(t, reloaded.FiredPrice.Equal(decimal.RequireFromString("3150")))
	require.NotNil(t, reloaded.FiredAt)

	// Firing is a notification, never a trade.
	var count int64
	require.NoError(t, f.db.Model(&model.Transaction{}).Where("account_id = ?", account.ID).Count(&count).Error)
	require.Zero(t, count)

	var notifications []model.Notification
	require.NoError(t, f.db.Where("account_id = ?", account.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, model.NotificationAlertFired, notifications[0].Kind)

	// A fired alert never re-arms, even if the condition still holds.
	require.NoError(t, f.alerting.RunOnce(ctx))
	require.NoError(t, f.db.Where("account_id = ?", account.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
}

func TestAlertSweepBelowCondition(t *testing.T) {
	f := newSweepFixture(t)
	account := f.seedAccount(t, "10000")
	alert := f.seedAlert(t, account.ID, "INFY", model.AlertConditionBelow, "40")

	ctx := context.Background()

	f.feed.SetPrice("INFY", decimal.RequireFromString("41"))
	require.NoError(t, f.alerting.RunOnce(ctx))

	var reloaded model.Alert
	require.NoError(t, f.db.First(&reloaded, alert.ID).Error)
	require.Equal(t, model.AlertStatusActive, reloaded.Status)

	// Ties fire.
	f.feed.SetPrice("INFY", decimal.RequireFromString("40"))
	require.NoError(t, f.alerting.RunOnce(ctx))

	require.NoError(t, f.db.First(&reloaded, alert.ID).Error)
	require.Equal(t, model.AlertStatusFired, reloaded.Status)
}

// Alerts are watches, not trades, so the sweep is not gated by the calendar.
func TestAlertSweepFiresOffHours(t *testing.T) {
	f := newSweepFixture(t)
	f.alerting.now = func() time.Time { return sundayNight }

	account := f.seedAccount(t, "10000")
	alert := f.seedAlert(t, account.ID, "TCS", model.AlertConditionAbove, "3100")

	f.feed.SetPrice("TCS", decimal.RequireFromString("3150"))
	require.NoError(t, f.alerting.RunOnce(context.Background()))

	var reloaded model.Alert
	require.NoError(t, f.db.First(&reloaded, alert.ID).Error)
	require.Equal(t, model.AlertStatusFired, reloaded.Status)
}
