package catalog

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encorelando/encorelando/internal/alerts"
	"github.com/encorelando/encorelando/internal/web"
)

// wallClock is the wire format for stored performance times. Concert times
// are Eastern wall-clock and must round-trip as literal digits, so they are
// formatted without an offset.
const wallClock = "2006-01-02T15:04:05"

type Service struct {
	db     *pgxpool.Pool
	alerts *alerts.Service
}

func NewService(db *pgxpool.Pool, alertSvc *alerts.Service) *Service {
	return &Service{db: db, alerts: alertSvc}
}

func (s *Service) ListParks(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(r.Context(), `
		SELECT id, name, COALESCE(description,''), COALESCE(website_url,'')
		FROM parks ORDER BY name ASC
	`)
	if err != nil { http.Error(w, err.Error(), 500); return }
	defer rows.Close()

	type P struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		WebsiteURL  string `json:"websiteUrl"`
	}
	items := []P{}
	for rows.Next() {
		var p P
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.WebsiteURL); err == nil {
			items = append(items, p)
		}
	}
	web.JSON(w, 200, map[string]any{"items": items})
}

func (s *Service) ListVenues(w http.ResponseWriter, r *http.Request) {
	parkID := web.QueryString(r, "parkId", "")
	rows, err := s.db.Query(r.Context(), `
		SELECT v.id, v.name, COALESCE(v.location_details,''), COALESCE(p.name,'')
		FROM venues v
		LEFT JOIN parks p ON p.id = v.park_id
		WHERE ($1 = '' OR v.park_id::text = $1)
		ORDER BY v.name ASC
	`, parkID)
	if err != nil { http.Error(w, err.Error(), 500); return }
	defer rows.Close()

	type V struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		LocationDetails string `json:"locationDetails"`
		Park            string `json:"park"`
	}
	items := []V{}
	for rows.Next() {
		var v V
		if err := rows.Scan(&v.ID, &v.Name, &v.LocationDetails, &v.Park); err == nil {
			items = append(items, v)
		}
	}
	web.JSON(w, 200, map[string]any{"items": items})
}

func (s *Service) ListArtists(w http.ResponseWriter, r *http.Request) {
	q := web.QueryString(r, "q", "")
	limit := web.QueryInt(r, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(r.Context(), `
		SELECT id, name, COALESCE(description,''), COALESCE(image_url,''), genres
		FROM artists
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%')
		ORDER BY name ASC
		LIMIT $2
	`, q, limit)
	if err != nil { http.Error(w, err.Error(), 500); return }
	defer rows.Close()

	items := []artistOut{}
	for rows.Next() {
		var a artistOut
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.ImageURL, &a.Genres); err == nil {
			items = append(items, a)
		}
	}
	web.JSON(w, 200, map[string]any{"items": items})
}

type artistOut struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Genres      []string `json:"genres"`
}

func (s *Service) GetArtist(w http.ResponseWriter, r *http.Request) {
	id := web.Param(r, "id")
	var a artistOut
	err := s.db.QueryRow(r.Context(), `
		SELECT id, name, COALESCE(description,''), COALESCE(image_url,''), genres
		FROM artists WHERE id=$1
	`, id).Scan(&a.ID, &a.Name, &a.Description, &a.ImageURL, &a.Genres)
	if err != nil { http.Error(w, "not found", 404); return }

	concerts, err := s.queryConcerts(r, `c.artist_id=$1 AND c.start_time >= now()::timestamp`, id)
	if err != nil { http.Error(w, err.Error(), 500); return }
	web.JSON(w, 200, map[string]any{"artist": a, "upcomingConcerts": concerts})
}

type concertOut struct {
	ID         string `json:"id"`
	Artist     string `json:"artist"`
	ArtistID   string `json:"artistId"`
	Venue      string `json:"venue"`
	VenueID    string `json:"venueId"`
	Park       string `json:"park"`
	FestivalID string `json:"festivalId,omitempty"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (s *Service) queryConcerts(r *http.Request, where string, args ...any) ([]concertOut, error) {
	rows, err := s.db.Query(r.Context(), `
		SELECT c.id, a.name, a.id, v.name, v.id, COALESCE(p.name,''),
		       COALESCE(c.festival_id::text,''), c.start_time, c.end_time, COALESCE(c.notes,'')
		FROM concerts c
		JOIN artists a ON a.id = c.artist_id
		JOIN venues v ON v.id = c.venue_id
		LEFT JOIN parks p ON p.id = v.park_id
		WHERE `+where+`
		ORDER BY c.start_time ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []concertOut{}
	for rows.Next() {
		var c concertOut
		var start time.Time
		var end sql.NullTime
		if err := rows.Scan(&c.ID, &c.Artist, &c.ArtistID, &c.Venue, &c.VenueID, &c.Park,
			&c.FestivalID, &start, &end, &c.Notes); err == nil {
			c.StartTime = start.Format(wallClock)
			if end.Valid {
				c.EndTime = end.Time.Format(wallClock)
			}
			items = append(items, c)
		}
	}
	return items, nil
}

func (s *Service) ListConcerts(w http.ResponseWriter, r *http.Request) {
	date := web.QueryString(r, "date", "")
	parkID := web.QueryString(r, "parkId", "")
	artistID := web.QueryString(r, "artistId", "")
	festivalID := web.QueryString(r, "festivalId", "")

	items, err := s.queryConcerts(r, `
		($1 = '' OR c.start_time::date = $1::date)
		AND ($2 = '' OR v.park_id::text = $2)
		AND ($3 = '' OR c.artist_id::text = $3)
		AND ($4 = '' OR c.festival_id::text = $4)
	`, date, parkID, artistID, festivalID)
	if err != nil { http.Error(w, err.Error(), 500); return }
	web.JSON(w, 200, map[string]any{"items": items})
}

func (s *Service) GetConcert(w http.ResponseWriter, r *http.Request) {
	id := web.Param(r, "id")
	items, err := s.queryConcerts(r, `c.id=$1`, id)
	if err != nil { http.Error(w, err.Error(), 500); return }
	if len(items) == 0 {
		http.Error(w, "not found", 404)
		return
	}
	web.JSON(w, 200, map[string]any{"concert": items[0]})
}

type festivalOut struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	WebsiteURL  string `json:"websiteUrl"`
	Park        string `json:"park"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

func (s *Service) ListFestivals(w http.ResponseWriter, r *http.Request) {
	parkID := web.QueryString(r, "parkId", "")
	date := web.QueryString(r, "date", "")
	rows, err := s.db.Query(r.Context(), `
		SELECT f.id, f.name, COALESCE(f.description,''), COALESCE(f.website_url,''),
		       COALESCE(p.name,''), f.start_date, f.end_date
		FROM festivals f
		LEFT JOIN parks p ON p.id = f.park_id
		WHERE ($1 = '' OR f.park_id::text = $1)
		  AND ($2 = '' OR ($2::date BETWEEN f.start_date AND f.end_date))
		ORDER BY f.start_date ASC NULLS LAST
	`, parkID, date)
	if err != nil { http.Error(w, err.Error(), 500); return }
	defer rows.Close()

	items := []festivalOut{}
	for rows.Next() {
		var f festivalOut
		var start, end sql.NullTime
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.WebsiteURL, &f.Park, &start, &end); err == nil {
			if start.Valid {
				f.StartDate = start.Time.Format("2006-01-02")
			}
			if end.Valid {
				f.EndDate = end.Time.Format("2006-01-02")
			}
			items = append(items, f)
		}
	}
	web.JSON(w, 200, map[string]any{"items": items})
}

func (s *Service) GetFestival(w http.ResponseWriter, r *http.Request) {
	id := web.Param(r, "id")
	var f festivalOut
	var start, end sql.NullTime
	err := s.db.QueryRow(r.Context(), `
		SELECT f.id, f.name, COALESCE(f.description,''), COALESCE(f.website_url,''),
		       COALESCE(p.name,''), f.start_date, f.end_date
		FROM festivals f
		LEFT JOIN parks p ON p.id = f.park_id
		WHERE f.id=$1
	`, id).Scan(&f.ID, &f.Name, &f.Description, &f.WebsiteURL, &f.Park, &start, &end)
	if err != nil { http.Error(w, "not found", 404); return }
	if start.Valid {
		f.StartDate = start.Time.Format("2006-01-02")
	}
	if end.Valid {
		f.EndDate = end.Time.Format("2006-01-02")
	}

	concerts, err := s.queryConcerts(r, `c.festival_id=$1`, id)
	if err != nil { http.Error(w, err.Error(), 500); return }
	web.JSON(w, 200, map[string]any{"festival": f, "concerts": concerts})
}
