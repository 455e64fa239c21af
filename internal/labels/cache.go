package labels

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 24 * time.Hour

// cachedEntry is the value stored for each cached generation
type cachedEntry struct {
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache keeps successful remote generations in Redis
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache connects to Redis and verifies the connection
func NewCache(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewCacheWithClient(client, ttl), nil
}

// NewCacheWithClient creates a cache from an existing Redis client
func NewCacheWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{
		client: client,
		prefix: "labels:",
		ttl:    ttl,
	}
}

func (c *Cache) key(seed string, depth int) string {
	sum := sha256.Sum256([]byte(strconv.Itoa(depth) + "|" + seed))
	return fmt.Sprintf("%s%x", c.prefix, sum)
}

// Get returns the cached labels for (seed, depth); ok is false on a miss.
func (c *Cache) Get(ctx context.Context, seed string, depth int) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.key(seed, depth)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup labels: %w", err)
	}

	var entry cachedEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false, fmt.Errorf("unmarshal labels: %w", err)
	}
	labels, err := checkLabels(entry.Labels)
	if err != nil {
		return nil, false, nil
	}
	return labels, true, nil
}

// Put stores labels for (seed, depth) with the cache TTL
func (c *Cache) Put(ctx context.Context, seed string, depth int, labels []string) error {
	payload, err := json.Marshal(cachedEntry{Labels: labels, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	if err := c.client.Set(ctx, c.key(seed, depth), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("save labels: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// CachedBackend serves labels from the cache and fills it from next on a miss.
// Cache failures are logged and treated as misses.
type CachedBackend struct {
	next   Backend
	cache  *Cache
	logger *slog.Logger
}

func NewCachedBackend(next Backend, cache *Cache, logger *slog.Logger) *CachedBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedBackend{next: next, cache: cache, logger: logger}
}

func (b *CachedBackend) Labels(ctx context.Context, seed string, depth int) ([]string, error) {
	cached, ok, err := b.cache.Get(ctx, seed, depth)
	if err != nil {
		b.logger.Warn("labels cache lookup failed", "error", err)
	}
	if ok {
		return cached, nil
	}

	labels, err := b.next.Labels(ctx, seed, depth)
	if err != nil {
		return nil, err
	}
	if err := b.cache.Put(ctx, seed, depth, labels); err != nil {
		b.logger.Warn("labels cache store failed", "error", err)
	}
	return labels, nil
}
