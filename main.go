package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"papertrade/src/database"
	"papertrade/src/engine"
	"papertrade/src/executors"
	"papertrade/src/ledger"
	"papertrade/src/marketcalendar"
	"papertrade/src/notifier"
	"papertrade/src/quotefeed"
	"papertrade/src/repository"
	"papertrade/src/server"
	"papertrade/src/trading"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	tradingConfig := trading.GetConfig()
	sweepConfig := executors.GetConfig()
	serverConfig := server.GetConfig()

	calendar := marketcalendar.New(tradingConfig.AllowTradingAnytime)
	feed := quotefeed.NewClient(quotefeed.GetConfig())

	accounts := repository.NewAccountRepository()
	orders := repository.NewOrderRepository()
	alerts := repository.NewAlertRepository()
	transactions := repository.NewTransactionRepository()
	notifications := repository.NewNotificationRepository()
	watchlist := repository.NewWatchlistRepository()

	hub := notifier.NewHub()
	events := notifier.New(notifications, hub)

	book := ledger.New(database.MainDB)
	eng := engine.New(logger.WithField("component", "engine"), orders, book, events, tradingConfig.Fee)

	tradingService := trading.NewService(
		logger.WithField("component", "trading"),
		accounts, orders, alerts, eng, feed, calendar, tradingConfig,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orderSweep := executors.NewOrderSweep(orders, eng, feed, calendar)
	go orderSweep.Start(ctx, sweepConfig.LoopPeriod)

	alertSweep := executors.NewAlertSweep(alerts, feed, events)
	go alertSweep.Start(ctx, sweepConfig.AlertLoopPeriod)

	server.StartServer(serverConfig.Port, server.Deps{
		Accounts:      accounts,
		Transactions:  transactions,
		Notifications: notifications,
		Watchlist:     watchlist,
		Trading:       tradingService,
		Feed:          feed,
		Hub:           hub,
		StartingCash:  tradingConfig.StartingCash,
	})
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
