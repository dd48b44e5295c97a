package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. The ranked candidate window is shared by every discovery
// session, so it tolerates a short staleness window; per-video responses
// are invalidated on engagement writes.
const (
	RankCacheTTL  = 1 * time.Minute
	VideoCacheTTL = 5 * time.Minute
	StatsCacheTTL = 30 * time.Second
)

// CacheService provides a Redis cache-aside layer. If redisURL is empty or
// the connection fails, the client is nil and every operation is a no-op.
type CacheService struct {
	rdb *redis.Client

	// optional hit/miss callbacks, set once at startup
	onHit  func()
	onMiss func()
}

// SetCounters registers hit/miss callbacks for reads. Call before serving.
func (c *CacheService) SetCounters(onHit, onMiss func()) {
	c.onHit = onHit
	c.onMiss = onMiss
}

// track marks a read outcome.
func (c *CacheService) track(hit bool) {
	if hit && c.onHit != nil {
		c.onHit()
	}
	if !hit && c.onMiss != nil {
		c.onMiss()
	}
}

func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetRanked retrieves the cached ranked candidate window for a feed mode.
// Returns nil when not cached or caching is disabled.
func (c *CacheService) GetRanked(ctx context.Context, mode string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, rankKey(mode)).Bytes()
	if err == redis.Nil {
		c.track(false)
		return nil, nil
	}
	c.track(err == nil)
	return data, err
}

// SetRanked stores the ranked candidate window for a feed mode.
func (c *CacheService) SetRanked(ctx context.Context, mode string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, rankKey(mode), b, RankCacheTTL).Err()
}

// GetVideo retrieves a cached single-video response.
func (c *CacheService) GetVideo(ctx context.Context, videoID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, videoKey(videoID)).Bytes()
	if err == redis.Nil {
		c.track(false)
		return nil, nil
	}
	c.track(err == nil)
	return data, err
}

// SetVideo stores a single-video response.
func (c *CacheService) SetVideo(ctx context.Context, videoID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, videoKey(videoID), b, VideoCacheTTL).Err()
}

// InvalidateVideo removes a video from cache (called after engagement writes).
func (c *CacheService) InvalidateVideo(ctx context.Context, videoID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, videoKey(videoID)).Err()
}

// GetStats retrieves cached platform statistics.
func (c *CacheService) GetStats(ctx context.Context) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, "stats:global").Bytes()
	if err == redis.Nil {
		c.track(false)
		return nil, nil
	}
	c.track(err == nil)
	return data, err
}

// SetStats stores platform statistics.
func (c *CacheService) SetStats(ctx context.Context, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, "stats:global", b, StatsCacheTTL).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func rankKey(mode string) string {
	return fmt.Sprintf("rank:%s", mode)
}

func videoKey(videoID string) string {
	return fmt.Sprintf("video:%s", videoID)
}
