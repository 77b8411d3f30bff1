package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"route-simulation-service/internal/adapters/publish"
	"route-simulation-service/internal/adapters/repositories"
	"route-simulation-service/internal/api"
	"route-simulation-service/internal/config"
	"route-simulation-service/internal/platform/db"
	"route-simulation-service/internal/ports"
	"route-simulation-service/internal/sim"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/routes.json")
	port := config.Get("PORT", "8080")

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	// Initialize schema and seed demo routes on startup for local runs.
	if err := initAndSeed(pg, seedPath); err != nil {
		log.Fatal(err)
	}

	// Live location fan-out is optional: without REDIS_ADDR the simulator
	// still runs, it just skips publishing driver state.
	var publisher ports.LocationPublisher
	if addr := os.Getenv("REDIS_ADDR"); strings.TrimSpace(addr) != "" {
		rp := publish.NewRedisLocationPublisher(addr)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rp.Ping(ctx); err != nil {
			cancel()
			log.Fatalf("redis ping failed: addr=%s err=%v", addr, err)
		}
		cancel()
		defer rp.Close()
		publisher = rp
		log.Printf("Redis location publishing enabled addr=%s", addr)
	}

	manager := sim.NewManager(publisher)
	repo := repositories.NewPostgresRouteRepository(pg)
	router := api.NewRouter(repo, manager)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0, // streaming endpoint holds connections open
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal(err)
	case sig := <-stop:
		log.Printf("Shutting down signal=%s", sig)
	}

	// Halt playback goroutines before closing listeners so the final
	// driver state still reaches subscribers.
	manager.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
