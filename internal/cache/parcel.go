package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parceltrack/parceltrack/internal/model"
)

const (
	parcelKeyPrefix   = "parcel:"
	negCacheKeySuffix = ":neg"
	versionKeySuffix  = ":ver"

	// versionTTL bounds how long an invalidation counter outlives its last bump.
	versionTTL = 24 * time.Hour

	// DefaultParcelTTL is the TTL for cached parcel documents.
	DefaultParcelTTL = 10 * time.Minute

	// NegativeCacheTTL is the TTL for "no such parcel" entries.
	NegativeCacheTTL = time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func parcelKey(id string) string {
	return parcelKeyPrefix + id
}

// GetParcel retrieves a parcel from cache by ID.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetParcel(ctx context.Context, id string) (*model.Parcel, error) {
	data, err := c.client.Get(ctx, parcelKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	return decodeParcel(data)
}

// fillParcelScript stores a parcel only if no invalidation happened since the
// caller read the version. A missing counter reads as zero.
var fillParcelScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[2]) or '0')
	if current ~= tonumber(ARGV[3]) then
		return 0
	end

	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	redis.call('DEL', KEYS[3])

	return 1
`)

// ParcelVersion returns the invalidation counter for a parcel ID.
// Read it before loading the parcel from storage and pass it to FillParcel.
func (c *Cache) ParcelVersion(ctx context.Context, id string) (int64, error) {
	version, err := c.client.Get(ctx, parcelKey(id)+versionKeySuffix).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read parcel version: %w", err)
	}

	return version, nil
}

// FillParcel caches a parcel loaded from storage and clears any negative entry.
// It reports false without writing when DeleteParcel ran after version was read.
func (c *Cache) FillParcel(ctx context.Context, parcel *model.Parcel, version int64) (bool, error) {
	data, err := json.Marshal(parcel)
	if err != nil {
		return false, fmt.Errorf("failed to encode parcel: %w", err)
	}

	key := parcelKey(parcel.ID)
	keys := []string{key, key + versionKeySuffix, key + negCacheKeySuffix}

	stored, err := fillParcelScript.Run(ctx, c.client, keys, data, c.ttl.Milliseconds(), version).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to cache parcel: %w", err)
	}

	return stored == 1, nil
}

// DeleteParcel removes a parcel and its negative entry from cache and bumps
// the version so in-flight fills of the old copy are dropped.
func (c *Cache) DeleteParcel(ctx context.Context, id string) error {
	key := parcelKey(id)

	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key+versionKeySuffix)
	pipe.Expire(ctx, key+versionKeySuffix, versionTTL)
	pipe.Del(ctx, key, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete parcel from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a parcel ID is known to be missing.
func (c *Cache) IsNegativelyCached(ctx context.Context, id string) (bool, error) {
	exists, err := c.client.Exists(ctx, parcelKey(id)+negCacheKeySuffix).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a parcel ID as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, id string) error {
	err := c.client.SetEx(ctx, parcelKey(id)+negCacheKeySuffix, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}

// decodeParcel restores a cached parcel. JSON numbers come back as float64,
// matching what a fresh request body would produce.
func decodeParcel(data []byte) (*model.Parcel, error) {
	var p model.Parcel
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode cached parcel: %w", err)
	}
	return &p, nil
}
