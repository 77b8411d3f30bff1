package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"route-simulation-service/internal/domain"
	"route-simulation-service/internal/platform/obs"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

// Return all routes with their ordered stops.
func (p *PostgresRouteRepository) ListRoutes(ctx context.Context) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "routes.ListRoutes")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	query := `
	SELECT
		route_id,
		name
	FROM routes
	ORDER BY route_id;
	`
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		var r domain.Route
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	for _, r := range routes {
		stops, err := p.listStops(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("list routes: route %q: %w", r.ID, err)
		}
		r.Stops = stops
	}

	return routes, nil
}

// Return a single route with its ordered stops.
func (p *PostgresRouteRepository) GetRoute(ctx context.Context, id string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "routes.GetRoute")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	query := `
	SELECT
		route_id,
		name
	FROM routes
	WHERE route_id = $1;
	`
	var r domain.Route
	err = p.DB.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route: route %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get route: query route %q: %w", id, err)
	}

	stops, err := p.listStops(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("get route: route %q: %w", id, err)
	}
	r.Stops = stops

	return &r, nil
}

func (p *PostgresRouteRepository) listStops(ctx context.Context, routeID string) ([]domain.Stop, error) {
	query := `
	SELECT
		stop_id,
		name,
		kind,
		lat,
		lng,
		service_time_minutes,
		order_id,
		customer,
		items,
		priority
	FROM stops
	WHERE route_id = $1
	ORDER BY seq;
	`
	rows, err := p.DB.QueryContext(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("list stops: query stops table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.Stop, 0, 16)
	for rows.Next() {
		var (
			s        domain.Stop
			kind     string
			orderID  sql.NullString
			customer sql.NullString
			items    sql.NullInt64
			priority sql.NullString
		)
		err := rows.Scan(
			&s.ID, &s.Name, &kind,
			&s.Coordinates.Lat, &s.Coordinates.Lng,
			&s.ServiceTime,
			&orderID, &customer, &items, &priority,
		)
		if err != nil {
			return nil, fmt.Errorf("list stops: scan row: %w", err)
		}

		s.Kind = domain.StopKind(kind)
		s.Status = domain.StopPending
		if orderID.Valid {
			s.Order = &domain.OrderInfo{
				OrderID:  orderID.String,
				Customer: customer.String,
				Items:    int(items.Int64),
				Priority: priority.String,
			}
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stops: row iteration: %w", err)
	}

	return stops, nil
}
