package alerts

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscriberServer(t *testing.T, h *Hub, topics ...string) *websocket.Conn {
	t.Helper()
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sub := h.Subscribe(c, topics...)
		// signal the client that the subscription is registered
		_ = sub.send(map[string]any{"type": "ready"})
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var ready map[string]any
	require.NoError(t, conn.ReadJSON(&ready))
	require.Equal(t, "ready", ready["type"])
	return conn
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	conn := subscriberServer(t, h, "artist-1")

	h.Broadcast("artist-1", map[string]any{"type": "concert.scheduled", "concertId": "c1"})

	var got map[string]any
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "concert.scheduled", got["type"])
	assert.Equal(t, "c1", got["concertId"])
}

func TestHubBroadcastNoSubscribers(t *testing.T) {
	h := NewHub()
	assert.NotPanics(t, func() {
		h.Broadcast("nobody-home", map[string]any{"type": "concert.scheduled"})
	})
}

// Overlapping broadcasts to the same subscriber must serialize on the
// connection; gorilla supports only one concurrent writer per conn.
func TestHubConcurrentBroadcasts(t *testing.T) {
	h := NewHub()
	conn := subscriberServer(t, h, "artist-1")

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Broadcast("artist-1", map[string]any{"type": "concert.scheduled"})
		}()
	}

	for i := 0; i < n; i++ {
		var got map[string]any
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "concert.scheduled", got["type"])
	}
	wg.Wait()
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()

	sub := h.Subscribe(nil, "artist-1")
	h.Unsubscribe(sub, "artist-1")

	// a nil conn would panic on write, so delivery after Unsubscribe
	// would fail the test
	assert.NotPanics(t, func() {
		h.Broadcast("artist-1", map[string]any{"type": "concert.scheduled"})
	})
}
