package alerts

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Subscriber wraps a websocket connection with a write lock. gorilla
// permits at most one concurrent writer per connection, and broadcasts
// for different artists can fire at the same time.
type Subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (sub *Subscriber) send(payload any) error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.conn.WriteJSON(payload)
}

// Hub fans performance alerts out to websocket subscribers. Topics are
// artist ids; a subscriber holds one topic per favorited artist.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers the connection under every given topic and returns
// the subscriber handle used for Unsubscribe and direct sends.
func (h *Hub) Subscribe(conn *websocket.Conn, topics ...string) *Subscriber {
	sub := &Subscriber{conn: conn}
	h.mu.Lock()
	for _, topic := range topics {
		if _, ok := h.topics[topic]; !ok {
			h.topics[topic] = make(map[*Subscriber]struct{})
		}
		h.topics[topic][sub] = struct{}{}
	}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber, topics ...string) {
	h.mu.Lock()
	for _, topic := range topics {
		if m, ok := h.topics[topic]; ok {
			delete(m, sub)
			if len(m) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	h.mu.Unlock()
}

func (h *Hub) Broadcast(topic string, payload any) {
	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.topics[topic]))
	for sub := range h.topics[topic] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()
	for _, sub := range subs {
		_ = sub.send(payload)
	}
}
