package quotefeed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

// Compile-time interface check.
var _ Feed = (*Client)(nil)

type snapshotResponse struct {
	Quotes []Quote `json:"quotes"`
}

// Client is the HTTP implementation of Feed. Responses are cached per symbol
// for the configured TTL so the sweep and interactive requests do not hammer
// the upstream on every call.
type Client struct {
	http     *resty.Client
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]cachedQuote
}

type cachedQuote struct {
	quote     Quote
	fetchedAt time.Time
}

// NewClient builds a Client from config with retry and timeout applied.
func NewClient(cfg Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(8 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &Client{
		http:     httpClient,
		cacheTTL: cfg.CacheTTL,
		cache:    make(map[string]cachedQuote),
	}
}

// Snapshot returns quotes for the requested symbols. Fresh cache entries are
// served locally; the rest are fetched in one upstream call. A symbol the
// upstream does not know is simply absent from the result.
func (c *Client) Snapshot(ctx context.Context, symbols []string) (map[string]Quote, error) {
	out := make(map[string]Quote, len(symbols))

	missing := c.fromCache(symbols, out)
	if len(missing) == 0 {
		return out, nil
	}

	resp := snapshotResponse{}
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbols", strings.Join(missing, ",")).
		SetResult(&resp).
		Get("/v1/quotes")
	if err != nil {
		logger.WithError(err).WithField("symbols", missing).Warn("quote feed request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if res.IsError() {
		logger.WithFields(map[string]interface{}{
			"status":  res.StatusCode(),
			"symbols": missing,
		}).Warn("quote feed returned error status")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, res.StatusCode())
	}

	now := time.Now()
	c.mu.Lock()
	for _, q := range resp.Quotes {
		if q.Price.IsZero() || q.Price.IsNegative() {
			// Upstream occasionally reports zero for halted symbols; a zero
			// price must never reach the trigger evaluator.
			continue
		}
		c.cache[q.Symbol] = cachedQuote{quote: q, fetchedAt: now}
		out[q.Symbol] = q
	}
	c.mu.Unlock()

	return out, nil
}

func (c *Client) fromCache(symbols []string, out map[string]Quote) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	missing := make([]string, 0, len(symbols))
	for _, s := range symbols {
		entry, ok := c.cache[s]
		if ok && time.Since(entry.fetchedAt) < c.cacheTTL {
			out[s] = entry.quote
			continue
		}
		missing = append(missing, s)
	}
	return missing
}
