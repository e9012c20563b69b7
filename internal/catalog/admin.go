package catalog

import (
	"net/http"
	"strings"
	"time"

	"github.com/encorelando/encorelando/internal/web"
)

// Admin handlers. All are mounted behind the admin role gate.

func (s *Service) CreatePark(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		WebsiteURL  string `json:"websiteUrl"`
	}
	if err := web.DecodeJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		http.Error(w, "bad input", 400); return
	}
	var id string
	err := s.db.QueryRow(r.Context(), `
		INSERT INTO parks(name, description, website_url)
		VALUES($1, NULLIF($2,''), NULLIF($3,'')) RETURNING id
	`, in.Name, in.Description, in.WebsiteURL).Scan(&id)
	if err != nil { http.Error(w, err.Error(), 500); return }
	web.JSON(w, 201, map[string]any{"id": id})
}

func (s *Service) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name            string `json:"name"`
		ParkID          string `json:"parkId"`
		LocationDetails string `json:"locationDetails"`
	}
	if err := web.DecodeJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		http.Error(w, "bad input", 400); return
	}
	var id string
	err := s.db.QueryRow(r.Context(), `
		INSERT INTO venues(name, park_id, location_details)
		VALUES($1, NULLIF($2,'')::uuid, NULLIF($3,'')) RETURNING id
	`, in.Name, in.ParkID, in.LocationDetails).Scan(&id)
	if err != nil { http.Error(w, err.Error(), 500); return }
	web.JSON(w, 201, map[string]any{"id": id})
}

func (s *Service) CreateArtist(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		ImageURL    string   `json:"imageUrl"`
		Genres      []string `json:"genres"`
	}
	if err := web.DecodeJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		http.Error(w, "bad input", 400); return
	}
	if in.Genres == nil {
		in.Genres = []string{}
	}
	var id string
	err := s.db.QueryRow(r.Context(), `
		INSERT INTO artists(name, description, image_url, genres)
		VALUES($1, NULLIF($2,''), NULLIF($3,''), $4) RETURNING id
	`, in.Name, in.Description, in.ImageURL, in.Genres).Scan(&id)
	if err != nil { http.Error(w, err.Error(), 500); return }
	web.JSON(w, 201, map[string]any{"id": id})
}

func (s *Service) CreateFestival(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string `json:"name"`
		ParkID      string `json:"parkId"`
		Description string `json:"description"`
		WebsiteURL  string `json:"websiteUrl"`
		StartDate   string `json:"startDate"`
		EndDate     string `json:"endDate"`
	}
	if err := web.DecodeJSON(r, &in); err != nil || strings.TrimSpace(in.Name) == "" {
		http.Error(w, "bad input", 400); return
	}
	for _, d := range []string{in.StartDate, in.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			http.Error(w, "bad date "+d, 400); return
		}
	}
	var id string
	err := s.db.QueryRow(r.Context(), `
		INSERT INTO festivals(name, park_id, description, website_url, start_date, end_date)
		VALUES($1, NULLIF($2,'')::uuid, NULLIF($3,''), NULLIF($4,''), NULLIF($5,'')::date, NULLIF($6,'')::date)
		RETURNING id
	`, in.Name, in.ParkID, in.Description, in.WebsiteURL, in.StartDate, in.EndDate).Scan(&id)
	if err != nil { http.Error(w, err.Error(), 500); return }
	web.JSON(w, 201, map[string]any{"id": id})
}

func (s *Service) CreateConcert(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ArtistID   string `json:"artistId"`
		VenueID    string `json:"venueId"`
		FestivalID string `json:"festivalId"`
		StartTime  string `json:"startTime"`
		EndTime    string `json:"endTime"`
		Notes      string `json:"notes"`
	}
	if err := web.DecodeJSON(r, &in); err != nil || in.ArtistID == "" || in.VenueID == "" || in.StartTime == "" {
		http.Error(w, "bad input", 400); return
	}
	// Incoming times are Eastern wall-clock strings; stored verbatim in a
	// timestamp-without-timezone column.
	if _, err := time.Parse(wallClock, in.StartTime); err != nil {
		http.Error(w, "bad startTime", 400); return
	}
	if in.EndTime != "" {
		if _, err := time.Parse(wallClock, in.EndTime); err != nil {
			http.Error(w, "bad endTime", 400); return
		}
	}
	var id string
	err := s.db.QueryRow(r.Context(), `
		INSERT INTO concerts(artist_id, venue_id, festival_id, start_time, end_time, notes)
		VALUES($1, $2, NULLIF($3,'')::uuid, $4::timestamp, NULLIF($5,'')::timestamp, NULLIF($6,''))
		RETURNING id
	`, in.ArtistID, in.VenueID, in.FestivalID, in.StartTime, in.EndTime, in.Notes).Scan(&id)
	if err != nil { http.Error(w, err.Error(), 500); return }

	var artistName, venueName string
	_ = s.db.QueryRow(r.Context(), `SELECT name FROM artists WHERE id=$1`, in.ArtistID).Scan(&artistName)
	_ = s.db.QueryRow(r.Context(), `SELECT name FROM venues WHERE id=$1`, in.VenueID).Scan(&venueName)
	s.alerts.NotifyConcert(in.ArtistID, id, artistName, venueName, in.StartTime)

	web.JSON(w, 201, map[string]any{"id": id})
}

func (s *Service) DeleteConcert(w http.ResponseWriter, r *http.Request) {
	id := web.Param(r, "id")
	ct, err := s.db.Exec(r.Context(), `DELETE FROM concerts WHERE id=$1`, id)
	if err != nil { http.Error(w, err.Error(), 500); return }
	if ct.RowsAffected() == 0 {
		http.Error(w, "not found", 404)
		return
	}
	web.JSON(w, 200, map[string]any{"ok": true})
}
