package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/src/model"
)

type mockNotificationStore struct {
	records []*model.Notification
	err     error
}

func (m *mockNotificationStore) Create(ctx context.Context, n *model.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, n)
	return nil
}

func TestNotifyPersistsRecord(t *testing.T) {
	store := &mockNotificationStore{}
	n := New(store, NewHub())

	n.Notify(context.Background(), 7, model.NotificationOrderFilled, "TCS", "LIMIT BUY order filled: 10 TCS @ 3150.00")

	require.Len(t, store.records, 1)
	assert.EqualValues(t, 7, store.records[0].AccountID)
	assert.Equal(t, model.NotificationOrderFilled, store.records[0].Kind)
	assert.Equal(t, "TCS", store.records[0].Symbol)
}

func TestNotifySurvivesStoreFailure(t *testing.T) {
	store := &mockNotificationStore{err: assert.AnError}
	n := New(store, NewHub())

	// Must not panic or propagate; the fill already committed.
	n.Notify(context.Background(), 7, model.NotificationAlertFired, "TCS", "alert fired")
}

func TestNotifyWithoutHub(t *testing.T) {
	store := &mockNotificationStore{}
	n := New(store, nil)

	n.Notify(context.Background(), 7, model.NotificationOrderRejected, "TCS", "rejected")
	require.Len(t, store.records, 1)
}

func TestHubSubscriberCount(t *testing.T) {
	hub := NewHub()
	assert.Zero(t, hub.Subscribers())

	// Publishing with no subscribers is a no-op.
	hub.Publish(Event{AccountID: 1, Kind: model.NotificationOrderFilled})
}
