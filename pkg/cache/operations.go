package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"user-profile-api/pkg/metrics"

	"github.com/go-redis/redis/v8"
)

// Set stores a JSON-encoded value with the given expiration.
func Set(ctx context.Context, rdb redis.Cmdable, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return NewCacheError("marshal", err)
	}
	start := time.Now()
	err = rdb.Set(ctx, key, data, expiration).Err()
	metrics.ObserveRedis("set", start, err)
	if err != nil {
		return NewCacheError("set", err)
	}
	return nil
}

// Get loads a value into dest. A missing key yields ErrCacheMiss.
func Get(ctx context.Context, rdb redis.Cmdable, key string, dest interface{}) error {
	start := time.Now()
	val, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveRedis("get", start, nil)
		return ErrCacheMiss
	}
	metrics.ObserveRedis("get", start, err)
	if err != nil {
		return NewCacheError("get", err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return NewCacheError("unmarshal", err)
	}
	return nil
}

// Delete removes keys; missing keys are not an error.
func Delete(ctx context.Context, rdb redis.Cmdable, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	start := time.Now()
	err := rdb.Del(ctx, keys...).Err()
	metrics.ObserveRedis("delete", start, err)
	if err != nil {
		return NewCacheError("delete", err)
	}
	return nil
}

// Version returns the generation stored at versionKey, or 0 when unset.
func Version(ctx context.Context, rdb redis.Cmdable, versionKey string) (int64, error) {
	start := time.Now()
	v, err := rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveRedis("version", start, nil)
		return 0, nil
	}
	metrics.ObserveRedis("version", start, err)
	if err != nil {
		return 0, NewCacheError("version", err)
	}
	return v, nil
}

// SetIfVersion stores value at key only if versionKey still holds version.
// It reports whether the value was written.
func SetIfVersion(ctx context.Context, rdb redis.Cmdable, key, versionKey string, version int64, value interface{}, expiration time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, NewCacheError("marshal", err)
	}
	start := time.Now()
	res, err := setIfVersionScript.Run(ctx, rdb, []string{key, versionKey},
		strconv.FormatInt(version, 10), data, expiration.Milliseconds()).Int()
	metrics.ObserveRedis("set_if_version", start, err)
	if err != nil {
		return false, NewCacheError("set_if_version", err)
	}
	return res == 1, nil
}

// BumpVersion advances the generation at versionKey and removes keys in one
// MULTI block. The version key lives for versionTTL so a slow reader that saw
// the old generation can never match it again.
func BumpVersion(ctx context.Context, rdb redis.Cmdable, versionKey string, versionTTL time.Duration, keys ...string) error {
	start := time.Now()
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, versionTTL)
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	metrics.ObserveRedis("bump_version", start, err)
	if err != nil {
		return NewCacheError("bump_version", err)
	}
	return nil
}
