package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"papertrade/src/auth"
	"papertrade/src/handler"
	"papertrade/src/notifier"
	"papertrade/src/quotefeed"
	"papertrade/src/repository"
	"papertrade/src/trading"
)

// Deps collects everything the HTTP surface needs. The engine and sweeps run
// independently; the server only exposes them.
type Deps struct {
	Accounts      *repository.AccountRepository
	Transactions  *repository.TransactionRepository
	Notifications *repository.NotificationRepository
	Watchlist     *repository.WatchlistRepository
	Trading       *trading.Service
	Feed          quotefeed.Feed
	Hub           *notifier.Hub
	StartingCash  decimal.Decimal
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy belongs to the deployment's proxy layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Router assembles the chi router. Split from StartServer so tests can mount
// it on httptest.
func Router(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("\"/healthcheck\" error")
		}
	})
	r.Post("/signup", handler.SignupHandler(deps.Accounts, deps.StartingCash))
	r.Get("/market/status", handler.MarketStatusHandler(deps.Trading))
	r.Get("/market/quotes", handler.QuotesHandler(deps.Feed))

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(AccountMiddleware(deps.Accounts))

		r.Post("/trades/buy", handler.BuyNowHandler(deps.Trading))
		r.Post("/trades/sell", handler.SellNowHandler(deps.Trading))

		r.Post("/orders", handler.PlaceOrderHandler(deps.Trading))
		r.Get("/orders", handler.ListPendingOrdersHandler(deps.Trading))
		r.Delete("/orders/{ref}", handler.CancelOrderHandler(deps.Trading))

		r.Post("/alerts", handler.CreateAlertHandler(deps.Trading))
		r.Get("/alerts", handler.ListAlertsHandler(deps.Trading))
		r.Delete("/alerts/{ref}", handler.DeleteAlertHandler(deps.Trading))

		r.Get("/portfolio", handler.PortfolioHandler(deps.Accounts, deps.Feed))
		r.Get("/transactions", handler.SearchTransactionsHandler(deps.Transactions))
		r.Get("/notifications", handler.ListNotificationsHandler(deps.Notifications))

		r.Post("/watchlist", handler.AddWatchlistHandler(deps.Watchlist))
		r.Get("/watchlist", handler.ListWatchlistHandler(deps.Watchlist))
		r.Delete("/watchlist/{symbol}", handler.RemoveWatchlistHandler(deps.Watchlist))

		r.Get("/ws/notifications", notificationsStream(deps.Hub))
	})

	return r
}

// notificationsStream upgrades the connection and subscribes it to the
// account's live events. The read loop only exists to observe the close.
func notificationsStream(hub *notifier.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("websocket upgrade failed")
			return
		}

		hub.Subscribe(conn, account.ID)

		go func() {
			defer hub.Unsubscribe(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func StartServer(port string, deps Deps) {
	r := Router(deps)

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
