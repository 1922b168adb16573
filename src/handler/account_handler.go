package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shopspring/decimal"

	"papertrade/src/auth"
	"papertrade/src/model"
	"papertrade/src/quotefeed"
	"papertrade/src/repository"
)

type accountStore interface {
	Create(ctx context.Context, account *model.Account) error
	Positions(ctx context.Context, accountID uint) ([]model.Position, error)
}

type transactionSearcher interface {
	Search(ctx context.Context, options repository.TransactionSearchOptions) ([]model.Transaction, error)
}

type notificationReader interface {
	FindByAccount(ctx context.Context, accountID uint, limit int) ([]model.Notification, error)
}

type signupPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupHandler creates an account endowed with the configured starting cash.
func SignupHandler(accounts accountStore, startingCash decimal.Decimal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload signupPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid signup payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		payload.Username = strings.TrimSpace(payload.Username)
		payload.Email = strings.TrimSpace(payload.Email)
		if payload.Username == "" || payload.Email == "" || payload.Password == "" {
			http.Error(w, "username, email and password are required", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.WithError(err).Error("failed to hash password")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		account := &model.Account{
			Username:    payload.Username,
			Email:       payload.Email,
			Password:    string(hashedPassword),
			CashBalance: startingCash,
		}

		if err := accounts.Create(r.Context(), account); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				http.Error(w, "username or email already taken", http.StatusConflict)
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, account)
	}
}

type portfolioPosition struct {
	Symbol        string           `json:"symbol"`
	Quantity      int64            `json:"quantity"`
	AvgCost       decimal.Decimal  `json:"avg_cost"`
	LastPrice     *decimal.Decimal `json:"last_price,omitempty"`
	MarketValue   *decimal.Decimal `json:"market_value,omitempty"`
	UnrealizedPnL *decimal.Decimal `json:"unrealized_pnl,omitempty"`
}

type portfolioResponse struct {
	CashBalance decimal.Decimal     `json:"cash_balance"`
	Positions   []portfolioPosition `json:"positions"`
	Equity      decimal.Decimal     `json:"equity"`
}

// PortfolioHandler returns the account's cash, holdings and total equity.
// When the quote feed is down the positions are still returned, just without
// market values; a stale feed must never hide the ledger.
func PortfolioHandler(accounts accountStore, feed quotefeed.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		positions, err := accounts.Positions(r.Context(), account.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		symbols := make([]string, 0, len(positions))
		for _, p := range positions {
			symbols = append(symbols, p.Symbol)
		}

		var snapshot map[string]quotefeed.Quote
		if len(symbols) > 0 {
			snapshot, err = feed.Snapshot(r.Context(), symbols)
			if err != nil {
				logger.WithError(err).Warn("quote feed unavailable for portfolio valuation")
				snapshot = nil
			}
		}

		response := portfolioResponse{
			CashBalance: account.CashBalance,
			Positions:   make([]portfolioPosition, 0, len(positions)),
			Equity:      account.CashBalance,
		}

		for _, p := range positions {
			entry := portfolioPosition{
				Symbol:   p.Symbol,
				Quantity: p.Quantity,
				AvgCost:  p.AvgCost,
			}

			if quote, ok := snapshot[p.Symbol]; ok {
				qty := decimal.NewFromInt(p.Quantity)
				value := quote.Price.Mul(qty)
				pnl := quote.Price.Sub(p.AvgCost).Mul(qty)

				price := quote.Price
				entry.LastPrice = &price
				entry.MarketValue = &value
				entry.UnrealizedPnL = &pnl

				response.Equity = response.Equity.Add(value)
			}

			response.Positions = append(response.Positions, entry)
		}

		writeJSON(w, http.StatusOK, response)
	}
}

// SearchTransactionsHandler lists the account's executed fills, newest first.
// Supports pagination and filters (symbol, executedFrom, executedTo).
func SearchTransactionsHandler(transactions transactionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var symbol *string
		if symbolParam := r.URL.Query().Get("symbol"); symbolParam != "" {
			upper := strings.ToUpper(strings.TrimSpace(symbolParam))
			symbol = &upper
		}

		var executedFrom, executedTo *time.Time
		if fromParam := r.URL.Query().Get("executedFrom"); fromParam != "" {
			parsed, err := time.Parse(time.RFC3339, fromParam)
			if err != nil {
				http.Error(w, "invalid executedFrom", http.StatusBadRequest)
				return
			}
			executedFrom = &parsed
		}

		if toParam := r.URL.Query().Get("executedTo"); toParam != "" {
			parsed, err := time.Parse(time.RFC3339, toParam)
			if err != nil {
				http.Error(w, "invalid executedTo", http.StatusBadRequest)
				return
			}
			executedTo = &parsed
		}

		page := 1
		if pageParam := r.URL.Query().Get("page"); pageParam != "" {
			parsedPage, err := strconv.Atoi(pageParam)
			if err != nil || parsedPage <= 0 {
				http.Error(w, "invalid page", http.StatusBadRequest)
				return
			}
			page = parsedPage
		}

		pageSize := 20
		if sizeParam := r.URL.Query().Get("pageSize"); sizeParam != "" {
			parsedSize, err := strconv.Atoi(sizeParam)
			if err != nil || parsedSize <= 0 {
				http.Error(w, "invalid pageSize", http.StatusBadRequest)
				return
			}
			pageSize = parsedSize
		}

		offset := (page - 1) * pageSize

		results, err := transactions.Search(r.Context(), repository.TransactionSearchOptions{
			AccountID:      account.ID,
			Symbol:         symbol,
			ExecutedAfter:  executedFrom,
			ExecutedBefore: executedTo,
			Limit:          pageSize,
			Offset:         offset,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		if results == nil {
			results = []model.Transaction{}
		}

		writeJSON(w, http.StatusOK, results)
	}
}

// ListNotificationsHandler returns the account's recent notifications.
func ListNotificationsHandler(notifications notificationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 50
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		results, err := notifications.FindByAccount(r.Context(), account.ID, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		if results == nil {
			results = []model.Notification{}
		}

		writeJSON(w, http.StatusOK, results)
	}
}
