package scoreevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	hubWriteTimeout = 5 * time.Second
	hubBuffer       = 32
)

// Hub pushes events to websocket subscribers. Subscribers may pass
// ?component=<name> to receive only that component's events. A subscriber
// that falls hubBuffer events behind loses the overflow.
type Hub struct {
	mu      sync.RWMutex
	clients map[*subscriber]struct{}
}

type subscriber struct {
	component string
	send      chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*subscriber]struct{})}
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade score feed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	sub := &subscriber{
		component: r.URL.Query().Get("component"),
		send:      make(chan []byte, hubBuffer),
	}
	h.add(sub)
	defer h.remove(sub)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg := <-sub.send:
			wctx, cancel := context.WithTimeout(ctx, hubWriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				slog.Debug("score feed write failed", "error", err)
				return
			}
		}
	}
}

func (h *Hub) Emit(_ context.Context, e Event) error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	msg, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal score event: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.clients {
		if sub.component != "" && sub.component != e.Component {
			continue
		}
		select {
		case sub.send <- msg:
		default:
			slog.Warn("score feed subscriber lagging, event dropped", "learner_id", e.LearnerID)
		}
	}
	return nil
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.clients[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.clients, s)
	h.mu.Unlock()
}
