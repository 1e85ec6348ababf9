package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
)

// LocationCache holds the latest location snapshot per vehicle for cheap map
// reads. Misses return (nil, nil); the caller falls back to the store.
type LocationCache interface {
	SetLocation(ctx context.Context, vehicleID string, loc *models.LocationSnapshot) error
	GetLocation(ctx context.Context, vehicleID string) (*models.LocationSnapshot, error)
}

const locationTTL = 5 * time.Minute

func locationKey(vehicleID string) string {
	return fmt.Sprintf("vehicle:%s:location", vehicleID)
}

// RedisCache is the production LocationCache.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) SetLocation(ctx context.Context, vehicleID string, loc *models.LocationSnapshot) error {
	b, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, locationKey(vehicleID), b, locationTTL).Err()
}

func (c *RedisCache) GetLocation(ctx context.Context, vehicleID string) (*models.LocationSnapshot, error) {
	raw, err := c.client.Get(ctx, locationKey(vehicleID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var loc models.LocationSnapshot
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}
