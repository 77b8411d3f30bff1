package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS stops (
		route_id TEXT NOT NULL REFERENCES routes(route_id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		stop_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		service_time_minutes INTEGER NOT NULL DEFAULT 0,
		order_id TEXT,
		customer TEXT,
		items INTEGER,
		priority TEXT,
		PRIMARY KEY (route_id, seq)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_stops_route_seq
	ON stops(route_id, seq);
	`

	statements := []string{
		createRoutesQuery,
		createStopsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type StopSeed struct {
	StopID      string  `json:"stop_id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	ServiceTime int     `json:"service_time"`
	OrderID     *string `json:"order_id,omitempty"`
	Customer    *string `json:"customer,omitempty"`
	Items       *int    `json:"items,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

type RouteSeed struct {
	RouteID string     `json:"route_id"`
	Name    string     `json:"name"`
	Stops   []StopSeed `json:"stops"`
}

// Populate the database with route data from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed routes: read %q: %w", jsonPath, err)
	}

	var data []RouteSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed routes: parse json: %w", err)
	}

	for i, r := range data {
		if strings.TrimSpace(r.RouteID) == "" {
			return fmt.Errorf("seed routes: empty route_id at index %d", i)
		}
		if len(r.Stops) < 2 {
			return fmt.Errorf("seed routes: route %q needs at least 2 stops, got %d", r.RouteID, len(r.Stops))
		}
		for j, s := range r.Stops {
			if strings.TrimSpace(s.StopID) == "" {
				return fmt.Errorf("seed routes: route %q: empty stop_id at index %d", r.RouteID, j)
			}
			if s.ServiceTime < 0 {
				return fmt.Errorf("seed routes: route %q stop %q: negative service_time %d", r.RouteID, s.StopID, s.ServiceTime)
			}
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed routes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	routeQuery := `
	INSERT INTO routes (route_id, name)
	VALUES ($1, $2)
	ON CONFLICT (route_id) DO UPDATE SET name = EXCLUDED.name;
	`
	stopQuery := `
	INSERT INTO stops (
		route_id, seq, stop_id, name, kind, lat, lng,
		service_time_minutes, order_id, customer, items, priority
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (route_id, seq) DO UPDATE SET
		stop_id = EXCLUDED.stop_id,
		name = EXCLUDED.name,
		kind = EXCLUDED.kind,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		service_time_minutes = EXCLUDED.service_time_minutes,
		order_id = EXCLUDED.order_id,
		customer = EXCLUDED.customer,
		items = EXCLUDED.items,
		priority = EXCLUDED.priority;
	`

	for _, r := range data {
		if _, err := tx.Exec(routeQuery, r.RouteID, r.Name); err != nil {
			return fmt.Errorf("seed routes: insert route %q: %w", r.RouteID, err)
		}
		for seq, s := range r.Stops {
			_, err := tx.Exec(
				stopQuery,
				r.RouteID, seq, s.StopID, s.Name, s.Kind, s.Lat, s.Lng,
				s.ServiceTime, s.OrderID, s.Customer, s.Items, s.Priority,
			)
			if err != nil {
				return fmt.Errorf("seed routes: insert stop %q on route %q: %w", s.StopID, r.RouteID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed routes: commit tx: %w", err)
	}

	return nil
}
