// Package sweeper runs the trigger evaluator as a standalone process, either
// one-shot or looping, for deployments that keep the sweep off the API node.
package sweeper

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"papertrade/src/database"
	"papertrade/src/engine"
	"papertrade/src/executors"
	"papertrade/src/ledger"
	"papertrade/src/marketcalendar"
	"papertrade/src/notifier"
	"papertrade/src/quotefeed"
	"papertrade/src/repository"
	"papertrade/src/trading"
)

type Sweeper struct {
	// Once runs a single order and alert sweep and exits, for cron-style
	// deployments.
	Once bool
}

func (s *Sweeper) Start() error {
	config := executors.GetConfig()
	tradingConfig := trading.GetConfig()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	calendar := marketcalendar.New(tradingConfig.AllowTradingAnytime)
	feed := quotefeed.NewClient(quotefeed.GetConfig())

	orders := repository.NewOrderRepository()
	alerts := repository.NewAlertRepository()
	notifications := repository.NewNotificationRepository()

	events := notifier.New(notifications, notifier.NewHub())
	book := ledger.New(database.MainDB)
	eng := engine.New(logrus.WithField("component", "engine"), orders, book, events, tradingConfig.Fee)

	orderSweep := executors.NewOrderSweep(orders, eng, feed, calendar)
	alertSweep := executors.NewAlertSweep(alerts, feed, events)

	if s.Once {
		if err := orderSweep.RunOnce(ctx); err != nil {
			logrus.WithError(err).Error("order sweep failed")
			return err
		}
		if err := alertSweep.RunOnce(ctx); err != nil {
			logrus.WithError(err).Error("alert sweep failed")
			return err
		}
		return nil
	}

	go alertSweep.Start(ctx, config.AlertLoopPeriod)
	orderSweep.Start(ctx, config.LoopPeriod)

	return nil
}
