// Package quotefeed supplies per-symbol price snapshots from an external
// market-data source. The engine treats the feed as pull-based and possibly
// stale; it never writes to it.
package quotefeed

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable signals that the feed could not produce a snapshot at all
// (network failure, upstream outage). Callers skip the affected symbols for
// the current tick and retry on the next one.
var ErrUnavailable = errors.New("quote feed unavailable")

// Quote is one symbol's snapshot.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	AsOf          time.Time       `json:"as_of"`
}

// Feed is the pull-based snapshot source injected into the trigger evaluator
// and the trade service. Symbols missing from the result simply had no data;
// that is not an error.
type Feed interface {
	Snapshot(ctx context.Context, symbols []string) (map[string]Quote, error)
}
