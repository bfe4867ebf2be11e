package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ls-leads:"

// StatsCache guarda agregados do dashboard como JSON com TTL curto.
type StatsCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

// NewClient abre a conexão e valida com PING.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}
	return client, nil
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{Redis: client, TTL: ttl}
}

// Get devolve false sem erro quando a chave não existe ou expirou.
func (c *StatsCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.Redis.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed decoding cached %s: %w", key, err)
	}
	return true, nil
}

func (c *StatsCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, keyPrefix+key, raw, c.TTL).Err()
}

func (c *StatsCache) Ping(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}
