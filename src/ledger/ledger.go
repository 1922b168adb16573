// Package ledger owns cash balances and positions. Both apply operations run
// under a per-account lock and a database transaction, so no two operations
// on the same account interleave. The operations are not replay-safe; the
// execution engine is responsible for exactly-once invocation per fill.
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"papertrade/src/model"
)

type Ledger struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{
		db:    db,
		locks: make(map[uint]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(accountID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[accountID] = lock
	}
	return lock
}

// ApplyBuy debits qty*price+fee from the account and folds the shares into
// the position at a quantity-weighted average cost. Fails with
// ErrInsufficientFunds when the account cannot cover the total cost.
//
// finalize, when non-nil, runs inside the same database transaction after
// the ledger writes succeed; any error it returns rolls the whole apply
// back. The execution engine uses it to commit the order-status transition
// atomically with the cash movement.
func (l *Ledger) ApplyBuy(ctx context.Context, accountID uint, orderID *uint, symbol string, qty int64, price, fee decimal.Decimal, executedAt time.Time, finalize func(tx *gorm.DB) error) (*model.Transaction, error) {

	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	lock := l.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	qtyDec := decimal.NewFromInt(qty)
	cost := price.Mul(qtyDec).Add(fee)

	var txn *model.Transaction

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent appliers across processes (the
		// sweeper can run outside the API server); the in-process mutex alone
		// cannot do that. SQLite ignores the clause and serializes writers
		// itself.
		var account model.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNotFound
			}
			return err
		}

		if err := checkInvariants(&account, nil); err != nil {
			return err
		}

		if account.CashBalance.LessThan(cost) {
			return model.ErrInsufficientFunds
		}

		var position model.Position
		err := tx.Where("account_id = ? AND symbol = ?", accountID, symbol).First(&position).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			position = model.Position{
				AccountID: accountID,
				Symbol:    symbol,
				Quantity:  qty,
				AvgCost:   price.Round(4),
			}
			if err := tx.Create(&position).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			oldQty := decimal.NewFromInt(position.Quantity)
			newQty := position.Quantity + qty
			newAvg := position.AvgCost.Mul(oldQty).
				Add(price.Mul(qtyDec)).
				Div(decimal.NewFromInt(newQty)).
				Round(4)

			position.Quantity = newQty
			position.AvgCost = newAvg
			if err := tx.Save(&position).Error; err != nil {
				return err
			}
		}

		account.CashBalance = account.CashBalance.Sub(cost)
		if err := checkInvariants(&account, &position); err != nil {
			return err
		}
		if err := tx.Model(&model.Account{}).
			Where("id = ?", accountID).
			Update("cash_balance", account.CashBalance).Error; err != nil {
			return err
		}

		txn = &model.Transaction{
			Ref:        uuid.NewString(),
			AccountID:  accountID,
			OrderID:    orderID,
			Symbol:     symbol,
			Side:       model.OrderSideBuy,
			Quantity:   qty,
			Price:      price,
			Fee:        fee,
			CashDelta:  cost.Neg(),
			ExecutedAt: executedAt,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		if finalize != nil {
			return finalize(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":  "ledger",
		"op":         "ApplyBuy",
		"account_id": accountID,
		"symbol":     symbol,
		"qty":        qty,
		"price":      price.String(),
	}).Info("buy applied")

	return txn, nil
}

// ApplySell credits qty*price-fee to the account and reduces the position,
// removing it entirely at zero quantity. The average cost never changes on a
// sell. Fails with ErrInsufficientHoldings when fewer than qty shares are
// held, and with ErrInsufficientFunds when the fee exceeds the proceeds by
// more than the available cash.
//
// finalize behaves as in ApplyBuy.
func (l *Ledger) ApplySell(ctx context.Context, accountID uint, orderID *uint, symbol string, qty int64, price, fee decimal.Decimal, executedAt time.Time, finalize func(tx *gorm.DB) error) (*model.Transaction, error) {

	if qty <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	lock := l.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	qtyDec := decimal.NewFromInt(qty)
	proceeds := price.Mul(qtyDec).Sub(fee)

	var txn *model.Transaction

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent appliers across processes (the
		// sweeper can run outside the API server); the in-process mutex alone
		// cannot do that. SQLite ignores the clause and serializes writers
		// itself.
		var account model.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNotFound
			}
			return err
		}

		if err := checkInvariants(&account, nil); err != nil {
			return err
		}

		var position model.Position
		if err := tx.Where("account_id = ? AND symbol = ?", accountID, symbol).First(&position).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrInsufficientHoldings
			}
			return err
		}

		if position.Quantity < qty {
			return model.ErrInsufficientHoldings
		}

		newCash := account.CashBalance.Add(proceeds)
		if newCash.IsNegative() {
			// Fee larger than proceeds on a tiny sale; crediting would take
			// cash below zero, which the admission check treats as a funds
			// problem rather than an invariant breach.
			return model.ErrInsufficientFunds
		}

		position.Quantity -= qty
		if position.Quantity == 0 {
			if err := tx.Delete(&position).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(&position).Error; err != nil {
				return err
			}
		}

		account.CashBalance = newCash
		if err := checkInvariants(&account, &position); err != nil {
			return err
		}
		if err := tx.Model(&model.Account{}).
			Where("id = ?", accountID).
			Update("cash_balance", account.CashBalance).Error; err != nil {
			return err
		}

		txn = &model.Transaction{
			Ref:        uuid.NewString(),
			AccountID:  accountID,
			OrderID:    orderID,
			Symbol:     symbol,
			Side:       model.OrderSideSell,
			Quantity:   qty,
			Price:      price,
			Fee:        fee,
			CashDelta:  proceeds,
			ExecutedAt: executedAt,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		if finalize != nil {
			return finalize(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":  "ledger",
		"op":         "ApplySell",
		"account_id": accountID,
		"symbol":     symbol,
		"qty":        qty,
		"price":      price.String(),
	}).Info("sell applied")

	return txn, nil
}

// checkInvariants aborts the operation when stored state is already corrupt.
// A violation is fatal for the account's operation: it is logged and the
// surrounding transaction rolls back, never clamped to zero.
func checkInvariants(account *model.Account, position *model.Position) error {
	if account != nil && account.CashBalance.IsNegative() {
		logger.WithFields(map[string]interface{}{
			"component":  "ledger",
			"account_id": account.ID,
			"cash":       account.CashBalance.String(),
		}).Error("negative cash balance detected, blocking mutation")
		return model.ErrLedgerInvariant
	}
	if position != nil && position.Quantity < 0 {
		logger.WithFields(map[string]interface{}{
			"component":  "ledger",
			"account_id": position.AccountID,
			"symbol":     position.Symbol,
			"quantity":   position.Quantity,
		}).Error("negative position quantity detected, blocking mutation")
		return model.ErrLedgerInvariant
	}
	return nil
}
