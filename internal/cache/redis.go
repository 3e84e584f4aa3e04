// Package cache holds the read-through availability cache in front of the
// time-slot store. The store stays authoritative; entries only shorten reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bookabite/reservations/config"
	"github.com/bookabite/reservations/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), ttl)
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GetSlots returns the cached slot list for a restaurant day, or nil on a miss.
func (c *RedisCache) GetSlots(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error) {
	var slots []domain.TimeSlot
	found, err := c.get(ctx, slotsKey(restaurantID, date), &slots)
	if err != nil || !found {
		return nil, err
	}
	return slots, nil
}

func (c *RedisCache) SetSlots(ctx context.Context, restaurantID, date string, slots []domain.TimeSlot) error {
	return c.set(ctx, slotsKey(restaurantID, date), slots)
}

// GetSlot returns the cached slot for (restaurantID, date, time), or nil on a miss.
func (c *RedisCache) GetSlot(ctx context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error) {
	var slot domain.TimeSlot
	found, err := c.get(ctx, slotKey(restaurantID, date, slotTime), &slot)
	if err != nil || !found {
		return nil, err
	}
	return &slot, nil
}

func (c *RedisCache) SetSlot(ctx context.Context, slot domain.TimeSlot) error {
	return c.set(ctx, slotKey(slot.RestaurantID, slot.Date, slot.Time), slot)
}

// Invalidate drops the slot entry and the day listing that contains it.
func (c *RedisCache) Invalidate(ctx context.Context, restaurantID, date, slotTime string) error {
	return c.client.Del(ctx, slotKey(restaurantID, date, slotTime), slotsKey(restaurantID, date)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

func slotsKey(restaurantID, date string) string {
	return fmt.Sprintf("cache:slots:%s:%s", restaurantID, date)
}

func slotKey(restaurantID, date, slotTime string) string {
	return fmt.Sprintf("cache:slot:%s:%s:%s", restaurantID, date, slotTime)
}
