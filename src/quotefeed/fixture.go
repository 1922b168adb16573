package quotefeed

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var _ Feed = (*FixtureFeed)(nil)

// FixtureFeed is an in-memory Feed for tests and the seed command. Prices are
// set explicitly; unset symbols are absent from snapshots.
type FixtureFeed struct {
	mu     sync.RWMutex
	quotes map[string]Quote
	err    error
}

func NewFixtureFeed() *FixtureFeed {
	return &FixtureFeed{quotes: make(map[string]Quote)}
}

// SetPrice installs or updates a quote for symbol.
func (f *FixtureFeed) SetPrice(symbol string, price decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.quotes[symbol].Price
	f.quotes[symbol] = Quote{
		Symbol:        symbol,
		Price:         price,
		PreviousClose: prev,
		AsOf:          time.Now(),
	}
}

// Fail makes every subsequent Snapshot return err until reset with nil.
func (f *FixtureFeed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FixtureFeed) Snapshot(_ context.Context, symbols []string) (map[string]Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.err != nil {
		return nil, f.err
	}

	out := make(map[string]Quote, len(symbols))
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}
