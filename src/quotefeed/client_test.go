package quotefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestClient(t *testing.T, handler http.HandlerFunc, cacheTTL time.Duration) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
		RetryCount:     0,
		CacheTTL:       cacheTTL,
	})
}

func TestSnapshotFetchesQuotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/quotes", r.URL.Path)
		assert.Equal(t, "RELIANCE,TCS", r.URL.Query().Get("symbols"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes":[
			{"symbol":"RELIANCE","price":"2510.50","previous_close":"2500"},
			{"symbol":"TCS","price":"3150","previous_close":"3140.25"}
		]}`))
	}, time.Minute)

	quotes, err := client.Snapshot(context.Background(), []string{"RELIANCE", "TCS"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.True(t, quotes["RELIANCE"].Price.Equal(decimalFromString(t, "2510.50")))
	assert.True(t, quotes["TCS"].PreviousClose.Equal(decimalFromString(t, "3140.25")))
}

func TestSnapshotDropsNonPositivePrices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes":[
			{"symbol":"HALTED","price":"0"},
			{"symbol":"TCS","price":"3150"}
		]}`))
	}, time.Minute)

	quotes, err := client.Snapshot(context.Background(), []string{"HALTED", "TCS"})
	require.NoError(t, err)

	_, present := quotes["HALTED"]
	assert.False(t, present, "zero-price quote must not be returned")
	assert.Len(t, quotes, 1)
}

func TestSnapshotMissingSymbolIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes":[{"symbol":"TCS","price":"3150"}]}`))
	}, time.Minute)

	quotes, err := client.Snapshot(context.Background(), []string{"TCS", "NOSUCH"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
}

func TestSnapshotUpstreamErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, time.Minute)

	_, err := client.Snapshot(context.Background(), []string{"TCS"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
}

func TestSnapshotServesFromCache(t *testing.T) {
	var calls atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes":[{"symbol":"TCS","price":"3150"}]}`))
	}, time.Minute)

	ctx := context.Background()
	_, err := client.Snapshot(ctx, []string{"TCS"})
	require.NoError(t, err)
	_, err = client.Snapshot(ctx, []string{"TCS"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load(), "second snapshot should hit the cache")
}

func TestSnapshotExpiredCacheRefetches(t *testing.T) {
	var calls atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes":[{"symbol":"TCS","price":"3150"}]}`))
	}, time.Nanosecond)

	ctx := context.Background()
	_, err := client.Snapshot(ctx, []string{"TCS"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = client.Snapshot(ctx, []string{"TCS"})
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls.Load())
}
