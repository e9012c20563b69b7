package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encorelando/encorelando/internal/alerts"
	"github.com/encorelando/encorelando/internal/auth"
	"github.com/encorelando/encorelando/internal/calendar"
	"github.com/encorelando/encorelando/internal/catalog"
	"github.com/encorelando/encorelando/internal/config"
	"github.com/encorelando/encorelando/internal/favorites"
	"github.com/encorelando/encorelando/internal/share"
)

func newAPI(cfg config.Config, pool *pgxpool.Pool) http.Handler {
	r := chi.NewRouter()

	authSvc := auth.NewService(cfg, pool)
	r.Post("/auth/register", authSvc.Register)
	r.Post("/auth/login", authSvc.Login)
	r.Get("/auth/google/login", authSvc.GoogleLogin)
	r.Get("/auth/google/callback", authSvc.GoogleCallback)

	alertSvc := alerts.NewService(pool)
	cat := catalog.NewService(pool, alertSvc)
	r.Get("/parks", cat.ListParks)
	r.Get("/venues", cat.ListVenues)
	r.Get("/artists", cat.ListArtists)
	r.Get("/artists/{id}", cat.GetArtist)
	r.Get("/concerts", cat.ListConcerts)
	r.Get("/concerts/{id}", cat.GetConcert)
	r.Get("/festivals", cat.ListFestivals)
	r.Get("/festivals/{id}", cat.GetFestival)

	cal := calendar.NewService(cfg, pool)
	r.Get("/concerts/{id}/calendar", cal.ConcertLinks)
	r.Get("/concerts/{id}/calendar.ics", cal.ConcertICS)
	r.Get("/festivals/{id}/calendar", cal.FestivalLinks)
	r.Get("/festivals/{id}/calendar.ics", cal.FestivalICS)
	// Google's redirect carries no Authorization header; the signed state
	// inside the query identifies the user.
	r.Get("/calendar/google/callback", cal.Callback)

	sh := share.NewService(cfg)
	r.Post("/share", sh.Payload)

	r.Group(func(r chi.Router) {
		r.Use(authSvc.JWTMiddleware)

		r.Get("/user/me", authSvc.Me)

		fav := favorites.NewService(pool)
		r.Post("/favorites/toggle", fav.Toggle)
		r.Get("/favorites", fav.List)

		r.Get("/ws/alerts", alertSvc.WS)

		r.Get("/calendar/google/connect", cal.Connect)
		r.Post("/calendar/sync", cal.SyncFavorites)

		r.Group(func(r chi.Router) {
			r.Use(authSvc.RequireRole("admin"))
			r.Post("/admin/parks", cat.CreatePark)
			r.Post("/admin/venues", cat.CreateVenue)
			r.Post("/admin/artists", cat.CreateArtist)
			r.Post("/admin/festivals", cat.CreateFestival)
			r.Post("/admin/concerts", cat.CreateConcert)
			r.Delete("/admin/concerts/{id}", cat.DeleteConcert)
		})
	})

	return r
}
