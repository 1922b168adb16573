package notifier

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

// Event is the wire form pushed to websocket subscribers.
type Event struct {
	AccountID uint      `json:"account_id"`
	Kind      string    `json:"kind"`
	Symbol    string    `json:"symbol,omitempty"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Hub fans engine events out to connected websocket clients. Each connection
// is subscribed for a single account; a slow or broken client is dropped, it
// can reconnect and read the persisted notifications it missed.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]uint
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]uint)}
}

// Subscribe registers conn for events belonging to accountID.
func (h *Hub) Subscribe(conn *websocket.Conn, accountID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = accountID

	logger.WithFields(map[string]interface{}{
		"component":  "notifier",
		"account_id": accountID,
	}).Debug("websocket subscriber registered")
}

// Unsubscribe removes conn and closes it.
func (h *Hub) Unsubscribe(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

// Publish delivers the event to every subscriber of its account.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, accountID := range h.conns {
		if accountID != event.AccountID {
			continue
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(event); err != nil {
			logger.WithError(err).WithField("account_id", accountID).
				Warn("dropping unresponsive websocket subscriber")
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

// Subscribers returns the current connection count, for tests and diagnostics.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
