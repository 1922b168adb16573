package trading

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Fee is the flat per-trade brokerage applied on both sides of every fill.
	Fee                decimal.Decimal `envconfig:"TRADE_FEE" default:"20"`
	StartingCash       decimal.Decimal `envconfig:"STARTING_CASH" default:"100000"`
	AllowQueueOffHours bool            `envconfig:"ALLOW_QUEUE_OFF_HOURS" default:"true"`
	// AllowTradingAnytime is the dev override for the market calendar. Never
	// enable it in production; the calendar logs a warning when it is on.
	AllowTradingAnytime bool          `envconfig:"ALLOW_TRADING_ANYTIME" default:"false"`
	OrderTTL            time.Duration `envconfig:"ORDER_TTL" default:"720h"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
