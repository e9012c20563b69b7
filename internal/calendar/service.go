package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/encorelando/encorelando/internal/auth"
	"github.com/encorelando/encorelando/internal/config"
	"github.com/encorelando/encorelando/internal/share"
	"github.com/encorelando/encorelando/internal/web"
)

const wallClock = "2006-01-02T15:04:05"

type Service struct {
	cfg      config.Config
	db       *pgxpool.Pool
	oauth    *oauth2.Config
	stateKey []byte
}

func NewService(cfg config.Config, db *pgxpool.Pool) *Service {
	return &Service{
		cfg:      cfg,
		db:       db,
		stateKey: newStateKey(),
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.CalendarRedirectURL,
			Scopes:       []string{gcal.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
	}
}

// ConcertLinks returns the add-to-calendar URLs for one performance.
func (s *Service) ConcertLinks(w http.ResponseWriter, r *http.Request) {
	id := web.Param(r, "id")
	d, err := s.concertDescriptor(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "not found", 404); return
		}
		http.Error(w, err.Error(), 500); return
	}
	if d == nil {
		// concert exists but cannot resolve artist/venue; nothing to offer
		web.JSON(w, 422, map[string]any{"error": "concert is missing artist or venue"})
		return
	}
	links := Render(d)
	icsURL, _ := share.ResolveURL(s.cfg.PublicBaseURL, "/api/concerts/"+id+"/calendar.ics")
	web.JSON(w, 200, map[string]any{
		"google":   links.Google,
		"outlook":  links.Outlook,
		"yahoo":    links.Yahoo,
		"icsUrl":   icsURL,
		"filename": ICSFilename(d.Title),
	})
}

// ConcertICS serves the downloadable ICS file for one performance.
func (s *Service) ConcertICS(w http.ResponseWriter, r *http.Request) {
	id := web.Param(r, "id")
	d, err := s.concertDescriptor(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "not found", 404); return
		}
		http.Error(w, err.Error(), 500); return
	}
	if d == nil {
		http.Error(w, "concert is missing artist or venue", 422)
		return
	}
	writeICS(w, d)
}

func (s *Service) FestivalLinks(w http.ResponseWriter, r *http.Request) {
	id := web.Param(r, "id")
	d, err := s.festivalDescriptor(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "not found", 404); return
		}
		http.Error(w, err.Error(), 500); return
	}
	if d == nil {
		web.JSON(w, 422, map[string]any{"error": "festival has no date range"})
		return
	}
	links := Render(d)
	icsURL, _ := share.ResolveURL(s.cfg.PublicBaseURL, "/api/festivals/"+id+"/calendar.ics")
	web.JSON(w, 200, map[string]any{
		"google":   links.Google,
		"outlook":  links.Outlook,
		"yahoo":    links.Yahoo,
		"icsUrl":   icsURL,
		"filename": ICSFilename(d.Title),
	})
}

func (s *Service) FestivalICS(w http.ResponseWriter, r *http.Request) {
	id := web.Param(r, "id")
	d, err := s.festivalDescriptor(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "not found", 404); return
		}
		http.Error(w, err.Error(), 500); return
	}
	if d == nil {
		http.Error(w, "festival has no date range", 422)
		return
	}
	writeICS(w, d)
}

func writeICS(w http.ResponseWriter, d *EventDescriptor) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ICSFilename(d.Title)+`"`)
	_, _ = w.Write([]byte(BuildICS(d)))
}

// concertDescriptor loads one concert with its relations and builds the
// descriptor. (nil, nil) means the row exists but a required relation does
// not resolve.
func (s *Service) concertDescriptor(ctx context.Context, id string) (*EventDescriptor, error) {
	var (
		artistName                 sql.NullString
		venueName, locationDetails sql.NullString
		parkName                   sql.NullString
		start                      sql.NullTime
		end                        sql.NullTime
		notes                      sql.NullString
	)
	err := s.db.QueryRow(ctx, `
		SELECT a.name, v.name, v.location_details, p.name, c.start_time, c.end_time, c.notes
		FROM concerts c
		LEFT JOIN artists a ON a.id = c.artist_id
		LEFT JOIN venues v ON v.id = c.venue_id
		LEFT JOIN parks p ON p.id = v.park_id
		WHERE c.id=$1
	`, id).Scan(&artistName, &venueName, &locationDetails, &parkName, &start, &end, &notes)
	if err != nil {
		return nil, err
	}

	rec := ConcertRecord{ID: id, Notes: notes.String}
	if artistName.Valid {
		rec.Artist = &ArtistRef{Name: artistName.String}
	}
	if venueName.Valid {
		rec.Venue = &VenueRef{Name: venueName.String, LocationDetails: locationDetails.String}
		if parkName.Valid {
			rec.Venue.Park = &ParkRef{Name: parkName.String}
		}
	}
	if start.Valid {
		rec.StartTime = start.Time.Format(wallClock)
	}
	if end.Valid {
		rec.EndTime = end.Time.Format(wallClock)
	}

	link, err := share.ResolveURL(s.cfg.PublicBaseURL, "/concerts/"+id)
	if err != nil {
		return nil, err
	}
	return FromConcert(rec, link), nil
}

func (s *Service) festivalDescriptor(ctx context.Context, id string) (*EventDescriptor, error) {
	var (
		name       string
		desc       sql.NullString
		website    sql.NullString
		parkName   sql.NullString
		start, end sql.NullTime
	)
	err := s.db.QueryRow(ctx, `
		SELECT f.name, f.description, f.website_url, p.name, f.start_date, f.end_date
		FROM festivals f
		LEFT JOIN parks p ON p.id = f.park_id
		WHERE f.id=$1
	`, id).Scan(&name, &desc, &website, &parkName, &start, &end)
	if err != nil {
		return nil, err
	}

	rec := FestivalRecord{ID: id, Name: name, Description: desc.String, WebsiteURL: website.String}
	if parkName.Valid {
		rec.Park = &ParkRef{Name: parkName.String}
	}
	if start.Valid {
		rec.StartDate = start.Time.Format("2006-01-02")
	}
	if end.Valid {
		rec.EndDate = end.Time.Format("2006-01-02")
	}

	link, err := share.ResolveURL(s.cfg.PublicBaseURL, "/festivals/"+id)
	if err != nil {
		return nil, err
	}
	return FromFestival(rec, link), nil
}

// Connect starts the OAuth flow that lets us write to the user's Google
// Calendar. The state value carries the authenticated user through the
// redirect, which comes back without our JWT.
func (s *Service) Connect(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r)
	url := s.oauth.AuthCodeURL(s.mintState(uid), oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback is hit by Google's redirect, not by our client, so it sits
// outside the JWT middleware and authenticates via the signed state.
func (s *Service) Callback(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.verifyState(r.URL.Query().Get("state"))
	if !ok {
		http.Error(w, "bad state", 400); return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", 400); return
	}
	tok, err := s.oauth.Exchange(r.Context(), code)
	if err != nil { http.Error(w, "exchange: "+err.Error(), 400); return }
	if tok.RefreshToken == "" {
		http.Error(w, "no refresh_token (try logout/consent)", 400); return
	}
	_, err = s.db.Exec(r.Context(), `
		INSERT INTO google_calendar_tokens(user_id, refresh_token, scope)
		VALUES($1,$2,'calendar.events')
		ON CONFLICT (user_id) DO UPDATE SET refresh_token=EXCLUDED.refresh_token, updated_at=now()
	`, uid, tok.RefreshToken)
	if err != nil { http.Error(w, err.Error(), 500); return }
	web.JSON(w, 200, map[string]any{"ok": true})
}

// SyncFavorites upserts the user's favorited concerts into a dedicated
// EncoreLando calendar on their Google account.
func (s *Service) SyncFavorites(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r)

	rows, err := s.db.Query(r.Context(), `
		SELECT c.id FROM favorites f
		JOIN concerts c ON c.id = f.entity_id
		WHERE f.user_id=$1 AND f.entity_type='concert'
		ORDER BY c.start_time ASC
	`, uid)
	if err != nil { http.Error(w, err.Error(), 500); return }
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err == nil {
			ids = append(ids, id)
		}
	}
	rows.Close()

	if !s.cfg.CalendarEnabled {
		web.JSON(w, 200, map[string]any{
			"synced": false, "message": "Google Calendar disabled (GOOGLE_CALENDAR_ENABLED=0). Use the per-concert .ics downloads instead.",
			"events": len(ids),
		})
		return
	}

	var refresh string
	err = s.db.QueryRow(r.Context(), `SELECT refresh_token FROM google_calendar_tokens WHERE user_id=$1`, uid).Scan(&refresh)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "no calendar linked", 400); return
		}
		http.Error(w, err.Error(), 500); return
	}

	srv, err := s.calendarClient(r.Context(), refresh)
	if err != nil { http.Error(w, "calendar client: "+err.Error(), 500); return }

	calID, err := ensureCalendar(r.Context(), srv, "EncoreLando")
	if err != nil { http.Error(w, "ensure calendar: "+err.Error(), 500); return }

	synced := 0
	for _, cid := range ids {
		d, err := s.concertDescriptor(r.Context(), cid)
		if err != nil || d == nil {
			continue
		}
		ev := &gcal.Event{
			Id:          sanitizeID("encorelando-" + strings.ToLower(cid)),
			Summary:     d.Title,
			Description: d.Description,
			Location:    d.Location,
			Start: &gcal.EventDateTime{
				DateTime: extended(d.StartYear, d.StartMonth, d.StartDay, d.StartHours, d.StartMinutes),
				TimeZone: TZID,
			},
			End: &gcal.EventDateTime{
				DateTime: extended(d.EndYear, d.EndMonth, d.EndDay, d.EndHours, d.EndMinutes),
				TimeZone: TZID,
			},
		}
		if _, err := srv.Events.Update(calID, ev.Id, ev).Do(); err != nil {
			_, err = srv.Events.Insert(calID, ev).Do()
			if err != nil && !strings.Contains(strings.ToLower(err.Error()), "duplicate") {
				http.Error(w, "event upsert: "+err.Error(), 500); return
			}
		}
		synced++
	}
	web.JSON(w, 200, map[string]any{"synced": true, "events": synced})
}

func (s *Service) calendarClient(ctx context.Context, refresh string) (*gcal.Service, error) {
	src := oauth2.ReuseTokenSource(&oauth2.Token{RefreshToken: refresh}, s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh}))
	httpClient := oauth2.NewClient(ctx, src)
	return gcal.NewService(ctx, option.WithHTTPClient(httpClient))
}

func ensureCalendar(ctx context.Context, srv *gcal.Service, summary string) (string, error) {
	lst, err := srv.CalendarList.List().Do()
	if err == nil {
		for _, it := range lst.Items {
			if it.Summary == summary {
				return it.Id, nil
			}
		}
	}
	cal, err := srv.Calendars.Insert(&gcal.Calendar{Summary: summary, TimeZone: TZID}).Do()
	if err != nil {
		return "", fmt.Errorf("create calendar: %w", err)
	}
	return cal.Id, nil
}

func sanitizeID(s string) string {
	ok := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			ok = append(ok, r)
		}
	}
	return string(ok)
}
