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
)

type alertService interface {
	CreateAlert(ctx context.Context, accountID uint, symbol, condition string, targetPrice decimal.Decimal) (*model.Alert, error)
	DeleteAlert(ctx context.Context, accountID uint, ref string) error
	ListAlerts(ctx context.Context, accountID uint) ([]model.Alert, error)
}

type createAlertPayload struct {
	Symbol      string          `json:"symbol"`
	Condition   string          `json:"condition"`
	TargetPrice decimal.Decimal `json:"target_price"`
}

// CreateAlertHandler registers a price watch. Alerts are side-effect free:
// firing one only produces a notification, never a trade.
func CreateAlertHandler(service alertService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload createAlertPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid create alert payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		alert, err := service.CreateAlert(r.Context(), account.ID, payload.Symbol, payload.Condition, payload.TargetPrice)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, alert)
	}
}

// DeleteAlertHandler removes one of the account's alerts by reference.
func DeleteAlertHandler(service alertService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ref := chi.URLParam(r, "ref")
		if ref == "" {
			http.Error(w, "missing alert ref", http.StatusBadRequest)
			return
		}

		if err := service.DeleteAlert(r.Context(), account.ID, ref); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ListAlertsHandler returns the account's ACTIVE alerts.
func ListAlertsHandler(service alertService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := auth.GetAccountFromContext(r.Context())
		if !ok || account == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		alerts, err := service.ListAlerts(r.Context(), account.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if alerts == nil {
			alerts = []model.Alert{}
		}

		writeJSON(w, http.StatusOK, alerts)
	}
}
