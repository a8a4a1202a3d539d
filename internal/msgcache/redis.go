package msgcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "msgcache:"

// Redis is a Cache shared by every bot process, so content survives
// restarts and shard moves for the configured TTL.
type Redis struct {
	rdb   redis.Cmdable
	ttl   time.Duration
	clock func() time.Time
}

func NewRedis(rdb redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, clock: time.Now}
}

func key(messageID string) string { return keyPrefix + messageID }

func (r *Redis) Put(ctx context.Context, e Entry) error {
	if e.MessageID == "" {
		return ErrNoMessageID
	}
	if e.CachedAt.IsZero() {
		e.CachedAt = r.clock().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("msgcache: encode: %w", err)
	}
	return r.rdb.Set(ctx, key(e.MessageID), b, r.ttl).Err()
}

func (r *Redis) Get(ctx context.Context, messageID string) (Entry, bool, error) {
	if messageID == "" {
		return Entry{}, false, ErrNoMessageID
	}
	b, err := r.rdb.Get(ctx, key(messageID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		// A corrupt entry is a miss; it expires on its own.
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (r *Redis) Delete(ctx context.Context, messageID string) error {
	if messageID == "" {
		return ErrNoMessageID
	}
	return r.rdb.Del(ctx, key(messageID)).Err()
}
