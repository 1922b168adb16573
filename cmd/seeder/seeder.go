// Package seeder provisions a demo account with the starting endowment and a
// small watchlist, for local development and smoke tests.
package seeder

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"papertrade/src/database"
	"papertrade/src/model"
	"papertrade/src/repository"
	"papertrade/src/trading"
)

type Seeder struct {
	Username string
	Email    string
	Password string
}

var demoWatchlist = []string{"RELIANCE", "TCS", "INFY", "HDFCBANK"}

func (s *Seeder) Start() error {
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to main database")
		return err
	}

	ctx := context.Background()
	accounts := repository.NewAccountRepository()

	existing, err := accounts.FindByUsername(ctx, s.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		logrus.WithField("username", s.Username).Info("seed account already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := &model.Account{
		Username:    s.Username,
		Email:       s.Email,
		Password:    string(hashedPassword),
		CashBalance: trading.GetConfig().StartingCash,
	}
	if err := accounts.Create(ctx, account); err != nil {
		return err
	}

	watchlist := repository.NewWatchlistRepository()
	for _, symbol := range demoWatchlist {
		if err := watchlist.Add(ctx, account.ID, symbol); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"username":   account.Username,
	}).Info("seed account created")

	return nil
}
