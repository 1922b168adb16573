package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"papertrade/src/model"
	"papertrade/src/quotefeed"
	"papertrade/src/repository"
)

type mockAccountStore struct {
	created   *model.Account
	createErr error
	positions []model.Position
}

func (m *mockAccountStore) Create(ctx context.Context, account *model.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	account.ID = 1
	m.created = account
	return nil
}

func (m *mockAccountStore) Positions(ctx context.Context, accountID uint) ([]model.Position, error) {
	return m.positions, nil
}

func TestSignupHandler_Success(t *testing.T) {
	store := &mockAccountStore{}
	handler := SignupHandler(store, decimal.RequireFromString("100000"))

	req := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"secret123"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, store.created)
	assert.True(t, store.created.CashBalance.Equal(decimal.RequireFromString("100000")))

	// Password must be stored hashed, and never serialized.
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.created.Password), []byte("secret123")))
	assert.NotContains(t, rr.Body.String(), "secret123")
	assert.NotContains(t, rr.Body.String(), store.created.Password)
}

func TestSignupHandler_MissingFields(t *testing.T) {
	handler := SignupHandler(&mockAccountStore{}, decimal.RequireFromString("100000"))

	req := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"username":"alice","email":"","password":"secret123"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignupHandler_DuplicateUsername(t *testing.T) {
	handler := SignupHandler(&mockAccountStore{createErr: gorm.ErrDuplicatedKey}, decimal.RequireFromString("100000"))

	req := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"secret123"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestPortfolioHandler_ValuesPositions(t *testing.T) {
	store := &mockAccountStore{positions: []model.Position{
		{Symbol: "RELIANCE", Quantity: 10, AvgCost: decimal.RequireFromString("94")},
		{Symbol: "TCS", Quantity: 2, AvgCost: decimal.RequireFromString("3000")},
	}}

	feed := quotefeed.NewFixtureFeed()
	feed.SetPrice("RELIANCE", decimal.RequireFromString("100"))
	// TCS has no quote; its row appears without a market value.

	handler := PortfolioHandler(store, feed)

	req := authedRequest(http.MethodGet, "/portfolio", "")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var decoded struct {
		CashBalance decimal.Decimal `json:"cash_balance"`
		Positions   []struct {
			Symbol        string           `json:"symbol"`
			MarketValue   *decimal.Decimal `json:"market_value"`
			UnrealizedPnL *decimal.Decimal `json:"unrealized_pnl"`
		} `json:"positions"`
		Equity decimal.Decimal `json:"equity"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded))
	require.Len(t, decoded.Positions, 2)

	require.NotNil(t, decoded.Positions[0].MarketValue)
	assert.True(t, decoded.Positions[0].MarketValue.Equal(decimal.RequireFromString("1000")))
	assert.True(t, decoded.Positions[0].UnrealizedPnL.Equal(decimal.RequireFromString("60")))
	assert.Nil(t, decoded.Positions[1].MarketValue)
}

func TestPortfolioHandler_FeedDownStillReturnsHoldings(t *testing.T) {
	store := &mockAccountStore{positions: []model.Position{
		{Symbol: "RELIANCE", Quantity: 10, AvgCost: decimal.RequireFromString("94")},
	}}

	feed := quotefeed.NewFixtureFeed()
	feed.Fail(quotefeed.ErrUnavailable)

	handler := PortfolioHandler(store, feed)

	req := authedRequest(http.MethodGet, "/portfolio", "")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "RELIANCE")
}

type mockTransactionSearcher struct {
	results []model.Transaction
	options repository.TransactionSearchOptions
}

func (m *mockTransactionSearcher) Search(ctx context.Context, options repository.TransactionSearchOptions) ([]model.Transaction, error) {
	m.options = options
	return m.results, nil
}

func TestSearchTransactionsHandler_Pagination(t *testing.T) {
	mockRepo := &mockTransactionSearcher{results: []model.Transaction{{ID: 1, Symbol: "TCS"}}}
	handler := SearchTransactionsHandler(mockRepo)

	req := authedRequest(http.MethodGet, "/transactions?symbol=tcs&page=3&pageSize=10", "")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 7, mockRepo.options.AccountID)
	require.NotNil(t, mockRepo.options.Symbol)
	assert.Equal(t, "TCS", *mockRepo.options.Symbol)
	assert.Equal(t, 10, mockRepo.options.Limit)
	assert.Equal(t, 20, mockRepo.options.Offset)
}

func TestSearchTransactionsHandler_InvalidPage(t *testing.T) {
	handler := SearchTransactionsHandler(&mockTransactionSearcher{})

	req := authedRequest(http.MethodGet, "/transactions?page=zero", "")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type mockNotificationReader struct {
	results []model.Notification
	limit   int
}

func (m *mockNotificationReader) FindByAccount(ctx context.Context, accountID uint, limit int) ([]model.Notification, error) {
	m.limit = limit
	return m.results, nil
}

func TestListNotificationsHandler(t *testing.T) {
	mockRepo := &mockNotificationReader{results: []model.Notification{{ID: 1, Kind: model.NotificationOrderFilled}}}
	handler := ListNotificationsHandler(mockRepo)

	req := authedRequest(http.MethodGet, "/notifications?limit=5", "")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, mockRepo.limit)
	assert.Contains(t, rr.Body.String(), model.NotificationOrderFilled)
}
