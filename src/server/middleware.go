package server

import (
	"context"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"papertrade/src/auth"
	"papertrade/src/model"
)

type accountLoader interface {
	FindByID(ctx context.Context, id uint) (*model.Account, error)
}

// AccountMiddleware resolves the X-Account-ID header into the account and
// stores it in the request context. Requests without a valid account are
// rejected before the handlers run.
func AccountMiddleware(accounts accountLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idParam := r.Header.Get("X-Account-ID")
			if idParam == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := strconv.ParseUint(idParam, 10, 64)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			account, err := accounts.FindByID(r.Context(), uint(id))
			if err != nil {
				logger.WithError(err).Error("failed to load account for request")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if account == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAccount(r.Context(), account)))
		})
	}
}
