package db

import (
	"context"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func RunDevSeed(pool *pgxpool.Pool) error {
	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	type U struct{ Email, First, Last, Pass, Role string }
	users := []U{
		{"fan@example.com", "Fan", "Demo", "password", "user"},
		{"admin@example.com", "Admin", "Demo", "password", "admin"},
	}
	for _, u := range users {
		var id int64
		hash, _ := bcrypt.GenerateFromPassword([]byte(u.Pass), bcrypt.DefaultCost)
		err := tx.QueryRow(ctx, `
			INSERT INTO users(email, password_hash, first_name, last_name)
			VALUES($1,$2,$3,$4)
			ON CONFLICT (email) DO UPDATE SET first_name=EXCLUDED.first_name
			RETURNING id
		`, strings.ToLower(u.Email), string(hash), u.First, u.Last).Scan(&id)
		if err != nil {
			log.Printf("seed user %s: %v", u.Email, err)
			continue
		}
		_, _ = tx.Exec(ctx, `INSERT INTO user_roles(user_id, role) VALUES($1,$2) ON CONFLICT DO NOTHING`, id, u.Role)
	}

	var parkID string
	if err := tx.QueryRow(ctx, `
		INSERT INTO parks(name, description)
		VALUES('EPCOT', 'Walt Disney World park hosting the flagship festival concert series')
		RETURNING id
	`).Scan(&parkID); err != nil {
		return err
	}

	var venueID string
	if err := tx.QueryRow(ctx, `
		INSERT INTO venues(park_id, name, location_details)
		VALUES($1, 'America Gardens Theatre', 'American Adventure Pavilion')
		RETURNING id
	`, parkID).Scan(&venueID); err != nil {
		return err
	}

	var artistID string
	if err := tx.QueryRow(ctx, `
		INSERT INTO artists(name, description, genres)
		VALUES('The Orlando Brass', 'Local favorites covering four decades of hits', '{cover,brass}')
		RETURNING id
	`).Scan(&artistID); err != nil {
		return err
	}

	var festID string
	if err := tx.QueryRow(ctx, `
		INSERT INTO festivals(park_id, name, description, start_date, end_date)
		VALUES($1, 'Flower & Garden Festival', 'Garden Rocks concert series', '2025-03-05', '2025-06-02')
		RETURNING id
	`, parkID).Scan(&festID); err != nil {
		return err
	}

	_, _ = tx.Exec(ctx, `
		INSERT INTO concerts(artist_id, venue_id, festival_id, start_time, end_time, notes)
		VALUES($1, $2, $3, '2025-05-10 17:30:00', '2025-05-10 18:15:00', 'Three shows nightly')
	`, artistID, venueID, festID)

	return tx.Commit(ctx)
}
