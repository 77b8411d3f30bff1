// Package publish contains outbound adapters that push live simulation
// state to external stores.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"route-simulation-service/internal/domain"
)

const eventStreamMax = 256

// Redis-backed implementation of the LocationPublisher port.
// Driver positions live in a hash at driver:<id> so dashboards can read
// the latest fix with a single HGETALL; events are kept in a capped list
// at driver:<id>:events.
type RedisLocationPublisher struct {
	rdb *redis.Client
}

func NewRedisLocationPublisher(addr string) *RedisLocationPublisher {
	return &RedisLocationPublisher{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewRedisLocationPublisherFromClient wraps an existing client (tests).
func NewRedisLocationPublisherFromClient(rdb *redis.Client) *RedisLocationPublisher {
	return &RedisLocationPublisher{rdb: rdb}
}

// Record the driver's current position and status.
func (p *RedisLocationPublisher) PublishLocation(ctx context.Context, driver domain.Driver) error {
	key := "driver:" + driver.ID

	err := p.rdb.HSet(ctx, key, map[string]interface{}{
		"lat":             driver.CurrentLocation.Lat,
		"lng":             driver.CurrentLocation.Lng,
		"status":          string(driver.Status),
		"completed_stops": driver.CompletedStops,
		"total_stops":     driver.TotalStops,
		"last_update":     time.Now().Unix(),
	}).Err()
	if err != nil {
		return fmt.Errorf("publish location: hset %s: %w", key, err)
	}

	return nil
}

// Record a simulation event on the driver's event stream.
func (p *RedisLocationPublisher) PublishEvent(ctx context.Context, event domain.SimulationEvent) error {
	key := "driver:" + event.DriverID + ":events"

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publish event: marshal: %w", err)
	}

	pipe := p.rdb.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, eventStreamMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish event: lpush %s: %w", key, err)
	}

	return nil
}

// Ping verifies the Redis connection.
func (p *RedisLocationPublisher) Ping(ctx context.Context) error {
	if err := p.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis publisher: verify connection: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (p *RedisLocationPublisher) Close() error {
	return p.rdb.Close()
}
