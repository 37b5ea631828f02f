package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/casesurf/casesurf/pkg/models"
)

// Cache provides caching functionality using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Feed Snapshot Operations

const feedSnapshotKey = "feed:snapshot"

// SetFeedSnapshot stores the latest synced feed. Each sync overwrites
// the previous snapshot wholesale.
func (c *Cache) SetFeedSnapshot(ctx context.Context, snapshot *models.FeedSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal feed snapshot: %w", err)
	}

	return c.client.Set(ctx, feedSnapshotKey, data, ttl).Err()
}

// GetFeedSnapshot retrieves the cached feed snapshot
func (c *Cache) GetFeedSnapshot(ctx context.Context) (*models.FeedSnapshot, error) {
	data, err := c.client.Get(ctx, feedSnapshotKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get feed snapshot from cache: %w", err)
	}

	var snapshot models.FeedSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed snapshot: %w", err)
	}

	return &snapshot, nil
}

// InvalidateFeedSnapshot drops the cached feed
func (c *Cache) InvalidateFeedSnapshot(ctx context.Context) error {
	return c.client.Del(ctx, feedSnapshotKey).Err()
}

// Liked Video Set Operations
//
// Each browser session keeps a Redis set of liked video URLs so the
// like toggle survives page reloads without a signed-in profile.

func likedSetKey(sessionID string) string {
	return fmt.Sprintf("likes:%s", sessionID)
}

// AddLikedVideo marks a video as liked by the session. Returns true
// when the video was not already in the set.
func (c *Cache) AddLikedVideo(ctx context.Context, sessionID, url string, ttl time.Duration) (bool, error) {
	key := likedSetKey(sessionID)

	added, err := c.client.SAdd(ctx, key, url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add liked video: %w", err)
	}

	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to refresh liked set expiry: %w", err)
	}

	return added > 0, nil
}

// RemoveLikedVideo clears a like. Returns true when the video was in
// the set.
func (c *Cache) RemoveLikedVideo(ctx context.Context, sessionID, url string) (bool, error) {
	removed, err := c.client.SRem(ctx, likedSetKey(sessionID), url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove liked video: %w", err)
	}
	return removed > 0, nil
}

// IsVideoLiked reports whether the session has liked the video
func (c *Cache) IsVideoLiked(ctx context.Context, sessionID, url string) (bool, error) {
	liked, err := c.client.SIsMember(ctx, likedSetKey(sessionID), url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check liked video: %w", err)
	}
	return liked, nil
}

// ListLikedVideos returns every video URL the session has liked
func (c *Cache) ListLikedVideos(ctx context.Context, sessionID string) ([]string, error) {
	urls, err := c.client.SMembers(ctx, likedSetKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list liked videos: %w", err)
	}
	return urls, nil
}

// Report Cache Operations

func reportKey(docKey string) string {
	return fmt.Sprintf("report:%s", docKey)
}

// SetReport caches a generated report under the video document key
func (c *Cache) SetReport(ctx context.Context, docKey, text string, ttl time.Duration) error {
	return c.client.Set(ctx, reportKey(docKey), text, ttl).Err()
}

// GetReport retrieves a cached report. Empty string means miss.
func (c *Cache) GetReport(ctx context.Context, docKey string) (string, error) {
	text, err := c.client.Get(ctx, reportKey(docKey)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // Cache miss
		}
		return "", fmt.Errorf("failed to get report from cache: %w", err)
	}
	return text, nil
}

// Rate Limiting Operations

// CheckRateLimit checks if a rate limit has been exceeded
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	rateLimitKey := fmt.Sprintf("ratelimit:%s", key)

	// Increment counter
	count, err := c.client.Incr(ctx, rateLimitKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiry on first request
	if count == 1 {
		if err := c.client.Expire(ctx, rateLimitKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set expiry: %w", err)
		}
	}

	// Check if limit exceeded
	return count <= limit, nil
}

// Locking Operations

// AcquireLock attempts to acquire a distributed lock. Feed syncs take
// this so overlapping API and worker deployments do not sync twice.
func (c *Cache) AcquireLock(ctx context.Context, resource string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:%s", resource)
	return c.client.SetNX(ctx, key, "locked", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Cache) ReleaseLock(ctx context.Context, resource string) error {
	key := fmt.Sprintf("lock:%s", resource)
	return c.client.Del(ctx, key).Err()
}

// Generic Operations

// Exists checks if a key exists
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	result, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

// SetWithJSON sets a value with JSON marshaling
func (c *Cache) SetWithJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetWithJSON gets a value with JSON unmarshaling
func (c *Cache) GetWithJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil // Cache miss
		}
		return fmt.Errorf("failed to get value from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return nil
}

// Health check
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
