package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"papertrade/src/auth"
	"papertrade/src/model"
	"papertrade/src/trading"
)

type tradeService interface {
	BuyNow(ctx context.Context, accountID uint, symbol string, qty int64) (*model.Transaction, error)
	SellNow(ctx context.Context, accountID uint, symbol string, qty int64) (*model.Transaction, error)
	PlaceOrder(ctx context.Context, accountID uint, req trading.PlaceOrderRequest) (*model.Order, error)
	CancelOrder(ctx context.Context, accountID uint, ref string) error
	ListPendingOrders(ctx context.Context, accountID uint) ([]model.Order, error)
}

type marketTradePayload struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

type placeOrderPayload struct {
	Symbol      string          `json:"symbol"`
	Side        string          `json:"side"`
	Kind        string          `json:"kind"`
	Quantity    int64           `json:"quantity"`
	TargetPrice decimal.Decimal `json:"target_price"`
}

// BuyNowHandler executes a synchronous market buy for the authenticated
// account at the live snapshot price.
func BuyNowHandler(service tradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload marketTradePayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid buy payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		txn, err := service.BuyNow(r.Context(), account.ID, payload.Symbol, payload.Quantity)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, txn)
	}
}

// SellNowHandler executes a synchronous market sell for the authenticated
// account at the live snapshot price.
func SellNowHandler(service tradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload marketTradePayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid sell payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		txn, err := service.SellNow(r.Context(), account.ID, payload.Symbol, payload.Quantity)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, txn)
	}
}

// PlaceOrderHandler admits an order. MARKET orders fill synchronously;
// LIMIT/STOP/STOP_LOSS orders are queued for the trigger sweep.
func PlaceOrderHandler(service tradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload placeOrderPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid place order payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		req := trading.PlaceOrderRequest{
			Symbol:   payload.Symbol,
			Side:     payload.Side,
			Kind:     payload.Kind,
			Quantity: payload.Quantity,
		}
		if !payload.TargetPrice.IsZero() {
			target := payload.TargetPrice
			req.TargetPrice = &target
		}

		order, err := service.PlaceOrder(r.Context(), account.ID, req)
		if err != nil {
			// A rejected market order is persisted REJECTED; the client only
			// gets the error and can re-read it via the order list.
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, order)
	}
}

// CancelOrderHandler moves one of the account's PENDING orders to CANCELLED.
func CancelOrderHandler(service tradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ref := chi.URLParam(r, "ref")
		if ref == "" {
			http.Error(w, "missing order ref", http.StatusBadRequest)
			return
		}

		if err := service.CancelOrder(r.Context(), account.ID, ref); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	}
}

// ListPendingOrdersHandler returns the account's open orders, newest first.
func ListPendingOrdersHandler(service tradeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := service.ListPendingOrders(r.Context(), account.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if orders == nil {
			orders = []model.Order{}
		}

		writeJSON(w, http.StatusOK, orders)
	}
}
