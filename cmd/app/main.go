package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/encorelando/encorelando/internal/config"
	"github.com/encorelando/encorelando/internal/db"
	"github.com/encorelando/encorelando/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	migStart := time.Now()
	applied, err := db.RunMigrations(ctx, pool)
	if err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	log.Printf("migrations: %d applied (%v)", applied, time.Since(migStart))

	if cfg.Env == "dev" && os.Getenv("DEMO_SEED") == "1" {
		if err := db.RunDevSeed(pool); err != nil {
			log.Printf("dev-seed error: %v", err)
		} else {
			log.Printf("dev-seed: OK")
		}
	}

	srv := server.New(cfg, pool)

	addr := ":" + strconv.Itoa(cfg.Port)
	log.Printf("EncoreLando listening on %s (env=%s)", addr, cfg.Env)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := httpSrv.ListenAndServe(); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
