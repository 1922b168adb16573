package executors

import (
	"github.com/shopspring/decimal"

	"papertrade/src/model"
)

// orderTriggered evaluates a pending order's condition against the current
// price. Ties (price exactly equal to target) fire.
//
//	LIMIT     BUY  fires at price <= target (buy the dip)
//	LIMIT     SELL fires at price >= target (take profit)
//	STOP/STOP_LOSS SELL fires at price <= target (protective stop)
//	STOP/STOP_LOSS BUY  fires at price >= target (breakout entry)
func orderTriggered(order *model.Order, price decimal.Decimal) bool {
	if order.TargetPrice == nil {
		return false
	}
	target := *order.TargetPrice

	switch order.Kind {
	case model.OrderKindLimit:
		if order.Side == model.OrderSideBuy {
			return price.LessThanOrEqual(target)
		}
		return price.GreaterThanOrEqual(target)

	case model.OrderKindStop, model.OrderKindStopLoss:
		if order.Side == model.OrderSideSell {
			return price.LessThanOrEqual(target)
		}
		return price.GreaterThanOrEqual(target)
	}

	return false
}

// alertTriggered evaluates an alert's condition. Ties fire, matching order
// semantics.
func alertTriggered(alert *model.Alert, price decimal.Decimal) bool {
	if alert.Condition == model.AlertConditionAbove {
		return price.GreaterThanOrEqual(alert.TargetPrice)
	}
	return price.LessThanOrEqual(alert.TargetPrice)
}
