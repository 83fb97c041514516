package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chunwon/market/services/recommendation-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Cache memoizes recommendation lists per (kind, subject, limit). Redis
// key TTL provides the hard eviction tier; the soft freshness window is
// checked at read time against the computed_at embedded in the value.
// A per-subject index set makes Invalidate(subject) cover every entry
// that depends on that subject, whatever the kind or limit.
type Cache struct {
	Client   *redis.Client
	FreshTTL time.Duration
	EvictTTL time.Duration

	now func() time.Time
}

func New(addr, pass string, db int, fresh, evict time.Duration) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return NewWithClient(rdb, fresh, evict)
}

// NewWithClient wraps an existing client; tests pass a miniredis-backed one.
func NewWithClient(client *redis.Client, fresh, evict time.Duration) *Cache {
	return &Cache{
		Client:   client,
		FreshTTL: fresh,
		EvictTTL: evict,
		now:      time.Now,
	}
}

type envelope struct {
	ComputedAt time.Time               `json:"computed_at"`
	Items      []domain.Recommendation `json:"items"`
}

func entryKey(kind domain.RecKind, subject string, limit int) string {
	return fmt.Sprintf("rec:%s:%s:%d", kind, subject, limit)
}

func indexKey(subject string) string {
	return "rec:idx:" + subject
}

func (c *Cache) Get(ctx context.Context, kind domain.RecKind, subject string, limit int) (domain.CachedList, error) {
	raw, err := c.Client.Get(ctx, entryKey(kind, subject, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CachedList{}, domain.ErrCacheMiss
		}
		return domain.CachedList{}, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Corrupt entry: treat as a miss, the next Put overwrites it.
		return domain.CachedList{}, domain.ErrCacheMiss
	}

	age := c.now().Sub(env.ComputedAt)
	if c.EvictTTL > 0 && age >= c.EvictTTL {
		return domain.CachedList{}, domain.ErrCacheMiss
	}
	return domain.CachedList{
		Items:      env.Items,
		ComputedAt: env.ComputedAt,
		Stale:      c.FreshTTL > 0 && age >= c.FreshTTL,
	}, nil
}

func (c *Cache) Put(ctx context.Context, kind domain.RecKind, subject string, limit int, items []domain.Recommendation) error {
	raw, err := json.Marshal(envelope{ComputedAt: c.now().UTC(), Items: items})
	if err != nil {
		return err
	}

	key := entryKey(kind, subject, limit)
	pipe := c.Client.TxPipeline()
	pipe.Set(ctx, key, raw, c.EvictTTL)
	pipe.SAdd(ctx, indexKey(subject), key)
	pipe.Expire(ctx, indexKey(subject), c.EvictTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *Cache) Invalidate(ctx context.Context, subjects ...string) error {
	for _, subject := range subjects {
		idx := indexKey(subject)
		keys, err := c.Client.SMembers(ctx, idx).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		keys = append(keys, idx)
		if err := c.Client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// AllowRequest: simple fixed-window rate limit, fail open on redis errors.
func (c *Cache) AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error) {
	key := "ratelimit:" + ip
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return true, nil // fail open
	}
	if count == 1 {
		_ = c.Client.Expire(ctx, key, window).Err()
	}
	return count <= int64(limit), nil
}
