// Package cache holds the plant-list cache used by the REST API. Growth
// analyses are always computed fresh and never go through here.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/02loveslollipop/plant-growth-tracker/services/api/db"
)

const plantsKey = "plants:list"

// PlantCache caches the full plant list.
type PlantCache interface {
	// GetPlants reports ok=false on a miss.
	GetPlants(ctx context.Context) (plants []db.Plant, ok bool, err error)
	SetPlants(ctx context.Context, plants []db.Plant) error
	Invalidate(ctx context.Context) error
	Close() error
}

// Noop is used when no cache is configured.
type Noop struct{}

func (Noop) GetPlants(context.Context) ([]db.Plant, bool, error) { return nil, false, nil }
func (Noop) SetPlants(context.Context, []db.Plant) error         { return nil }
func (Noop) Invalidate(context.Context) error                    { return nil }
func (Noop) Close() error                                        { return nil }

// RedisCache stores the plant list as JSON in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, dbIndex int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// GetPlants returns the cached list.
func (c *RedisCache) GetPlants(ctx context.Context) ([]db.Plant, bool, error) {
	raw, err := c.client.Get(ctx, plantsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var plants []db.Plant
	if err := json.Unmarshal(raw, &plants); err != nil {
		return nil, false, fmt.Errorf("decode cached plants: %w", err)
	}
	return plants, true, nil
}

// SetPlants stores the list with the configured TTL.
func (c *RedisCache) SetPlants(ctx context.Context, plants []db.Plant) error {
	raw, err := json.Marshal(plants)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, plantsKey, raw, c.ttl).Err()
}

// Invalidate drops the cached list.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, plantsKey).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
