package alerts

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encorelando/encorelando/internal/auth"
)

type Service struct {
	db       *pgxpool.Pool
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{
		db:       db,
		hub:      NewHub(),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// WS subscribes the caller to new-performance alerts for every artist they
// have favorited. The topic set is fixed at connect time; re-connect to
// pick up new favorites.
func (s *Service) WS(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r)
	rows, err := s.db.Query(r.Context(), `
		SELECT entity_id FROM favorites WHERE user_id=$1 AND entity_type='artist'
	`, uid)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	var topics []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err == nil {
			topics = append(topics, id)
		}
	}
	rows.Close()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	sub := s.hub.Subscribe(conn, topics...)
	defer func() {
		s.hub.Unsubscribe(sub, topics...)
		conn.Close()
	}()

	// read loop drains client pings; clients send nothing meaningful
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// NotifyConcert announces a newly scheduled performance to the artist's
// subscribers. Fire-and-forget: alerts are not persisted.
func (s *Service) NotifyConcert(artistID string, concertID, artistName, venueName, startTime string) {
	s.hub.Broadcast(artistID, map[string]any{
		"type":      "concert.scheduled",
		"concertId": concertID,
		"artist":    artistName,
		"venue":     venueName,
		"startTime": startTime,
		"sentAt":    time.Now().UTC(),
	})
}
