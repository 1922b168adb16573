package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"papertrade/src/auth"
)

type watchlistStore interface {
	Add(ctx context.Context, accountID uint, symbol string) error
	Remove(ctx context.Context, accountID uint, symbol string) error
	List(ctx context.Context, accountID uint) ([]string, error)
}

type watchlistPayload struct {
	Symbol string `json:"symbol"`
}

// AddWatchlistHandler pins a symbol to the account's watchlist.
func AddWatchlistHandler(watchlist watchlistStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload watchlistPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid watchlist payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		symbol := strings.ToUpper(strings.TrimSpace(payload.Symbol))
		if symbol == "" {
			http.Error(w, "missing symbol", http.StatusBadRequest)
			return
		}

		if err := watchlist.Add(r.Context(), account.ID, symbol); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"symbol": symbol})
	}
}

// RemoveWatchlistHandler unpins a symbol from the account's watchlist.
func RemoveWatchlistHandler(watchlist watchlistStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
		if symbol == "" {
			http.Error(w, "missing symbol", http.StatusBadRequest)
			return
		}

		if err := watchlist.Remove(r.Context(), account.ID, symbol); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

// ListWatchlistHandler returns the account's watchlist symbols.
func ListWatchlistHandler(watchlist watchlistStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		symbols, err := watchlist.List(r.Context(), account.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if symbols == nil {
			symbols = []string{}
		}

		writeJSON(w, http.StatusOK, symbols)
	}
}
