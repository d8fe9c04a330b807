package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*Redis)(nil)

// DefaultPrefix namespaces every key written by Redis.
const DefaultPrefix = "storefront:"

// Tag sets outlive their members by at least this long so that an
// invalidation can still find them.
const minTagTTL = 24 * time.Hour

// Redis is a Store shared between gateway replicas. Values live under
// "<prefix>v:<key>"; every tag is a set "<prefix>t:<tag>" of value keys.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis store. An empty prefix selects DefaultPrefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Dial parses a redis:// URL and returns a connected client.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

func (r *Redis) valueKey(key string) string { return r.prefix + "v:" + key }
func (r *Redis) tagKey(tag string) string   { return r.prefix + "t:" + tag }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.valueKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if ttl < 0 {
		ttl = 0
	}
	vk := r.valueKey(key)
	tagTTL := max(ttl, minTagTTL)

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, vk, value, ttl)
		for _, tag := range tags {
			tk := r.tagKey(tag)
			p.SAdd(ctx, tk, vk)
			p.Expire(ctx, tk, tagTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tk := r.tagKey(tag)
		members, err := r.client.SMembers(ctx, tk).Result()
		if err != nil {
			return fmt.Errorf("redis members of %q: %w", tag, err)
		}
		keys := append(members, tk)
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis invalidate %q: %w", tag, err)
		}
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
