package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/matka-risk-platform/internal/jantri"
	"github.com/radieske/matka-risk-platform/internal/odds"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyMultiplier(gameKey string) string { return "odds:multiplier:" + gameKey }
func keyThresholds(session string) string { return "jantri:thresholds:" + session }

func (c *Cache) GetMultiplier(ctx context.Context, gameKey string) (odds.Multiplier, bool, error) {
	var m odds.Multiplier
	ok, err := c.getJSON(ctx, keyMultiplier(gameKey), &m)
	return m, ok, err
}

func (c *Cache) SetMultiplier(ctx context.Context, gameKey string, m odds.Multiplier, ttl time.Duration) error {
	return c.setJSON(ctx, keyMultiplier(gameKey), m, ttl)
}

func (c *Cache) DeleteMultiplier(ctx context.Context, gameKey string) error {
	return c.R.Del(ctx, keyMultiplier(gameKey)).Err()
}

// GetThresholds devolve os limites da sessão do operador, se houver
func (c *Cache) GetThresholds(ctx context.Context, session string) (jantri.Thresholds, bool, error) {
	var t jantri.Thresholds
	ok, err := c.getJSON(ctx, keyThresholds(session), &t)
	return t, ok, err
}

// SetThresholds guarda os limites por sessão; expiram junto com ela
func (c *Cache) SetThresholds(ctx context.Context, session string, t jantri.Thresholds, ttl time.Duration) error {
	return c.setJSON(ctx, keyThresholds(session), t, ttl)
}

func (c *Cache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, key, b, ttl).Err()
}
