package favorites

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encorelando/encorelando/internal/auth"
	"github.com/encorelando/encorelando/internal/web"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Toggle flips the favorite state for one artist or concert and reports the
// resulting state, so the client's optimistic flip can be confirmed or
// rolled back with a single response.
func (s *Service) Toggle(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r)
	var in struct {
		EntityType string `json:"entityType"`
		EntityID   string `json:"entityId"`
	}
	if err := web.DecodeJSON(r, &in); err != nil || in.EntityID == "" {
		http.Error(w, "bad input", 400); return
	}
	if in.EntityType != "artist" && in.EntityType != "concert" {
		http.Error(w, "entityType must be artist or concert", 400); return
	}

	ct, err := s.db.Exec(r.Context(), `
		DELETE FROM favorites WHERE user_id=$1 AND entity_type=$2 AND entity_id=$3
	`, uid, in.EntityType, in.EntityID)
	if err != nil { http.Error(w, err.Error(), 500); return }
	if ct.RowsAffected() > 0 {
		web.JSON(w, 200, map[string]any{"favorited": false})
		return
	}

	if _, err := s.db.Exec(r.Context(), `
		INSERT INTO favorites(user_id, entity_type, entity_id)
		VALUES($1,$2,$3) ON CONFLICT DO NOTHING
	`, uid, in.EntityType, in.EntityID); err != nil {
		http.Error(w, "unknown entity?", 400)
		return
	}
	web.JSON(w, 200, map[string]any{"favorited": true})
}

func (s *Service) List(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r)
	rows, err := s.db.Query(r.Context(), `
		SELECT entity_type, entity_id FROM favorites
		WHERE user_id=$1 ORDER BY created_at DESC
	`, uid)
	if err != nil { http.Error(w, err.Error(), 500); return }
	defer rows.Close()

	artists := []string{}
	concerts := []string{}
	for rows.Next() {
		var typ, id string
		if err := rows.Scan(&typ, &id); err != nil {
			continue
		}
		switch typ {
		case "artist":
			artists = append(artists, id)
		case "concert":
			concerts = append(concerts, id)
		}
	}
	web.JSON(w, 200, map[string]any{"artists": artists, "concerts": concerts})
}
