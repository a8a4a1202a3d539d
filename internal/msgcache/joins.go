package msgcache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// JoinTimes remembers when each member joined a guild. Leave events do not
// carry a join time, so it is recorded while the member is still present.
type JoinTimes interface {
	RememberJoins(ctx context.Context, guildID string, joined map[string]time.Time) error
	JoinedAt(ctx context.Context, guildID, userID string) (time.Time, bool, error)
	ForgetJoin(ctx context.Context, guildID, userID string) error
}

var ErrNoGuildID = errors.New("msgcache: guild id required")

// MemoryJoins keeps join times in process, evicting the least recently
// touched member once maxSize is reached.
type MemoryJoins struct {
	lru *expirable.LRU[string, time.Time]
}

func NewMemoryJoins(maxSize int) *MemoryJoins {
	if maxSize <= 0 {
		maxSize = 100000
	}
	return &MemoryJoins{lru: expirable.NewLRU[string, time.Time](maxSize, nil, 0)}
}

func memberKey(guildID, userID string) string { return guildID + "/" + userID }

func (m *MemoryJoins) RememberJoins(_ context.Context, guildID string, joined map[string]time.Time) error {
	if guildID == "" {
		return ErrNoGuildID
	}
	for userID, at := range joined {
		if userID == "" || at.IsZero() {
			continue
		}
		m.lru.Add(memberKey(guildID, userID), at)
	}
	return nil
}

func (m *MemoryJoins) JoinedAt(_ context.Context, guildID, userID string) (time.Time, bool, error) {
	at, ok := m.lru.Get(memberKey(guildID, userID))
	return at, ok, nil
}

func (m *MemoryJoins) ForgetJoin(_ context.Context, guildID, userID string) error {
	m.lru.Remove(memberKey(guildID, userID))
	return nil
}

const joinsKeyPrefix = "joined:"

// RedisJoins keeps one hash per guild: field user ID, value unix millis.
type RedisJoins struct {
	rdb redis.Cmdable
}

func NewRedisJoins(rdb redis.Cmdable) *RedisJoins { return &RedisJoins{rdb: rdb} }

func joinsKey(guildID string) string { return joinsKeyPrefix + guildID }

func (r *RedisJoins) RememberJoins(ctx context.Context, guildID string, joined map[string]time.Time) error {
	if guildID == "" {
		return ErrNoGuildID
	}
	fields := make(map[string]any, len(joined))
	for userID, at := range joined {
		if userID == "" || at.IsZero() {
			continue
		}
		fields[userID] = strconv.FormatInt(at.UnixMilli(), 10)
	}
	if len(fields) == 0 {
		return nil
	}
	return r.rdb.HSet(ctx, joinsKey(guildID), fields).Err()
}

func (r *RedisJoins) JoinedAt(ctx context.Context, guildID, userID string) (time.Time, bool, error) {
	if guildID == "" {
		return time.Time{}, false, ErrNoGuildID
	}
	ms, err := r.rdb.HGet(ctx, joinsKey(guildID), userID).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

func (r *RedisJoins) ForgetJoin(ctx context.Context, guildID, userID string) error {
	if guildID == "" {
		return ErrNoGuildID
	}
	return r.rdb.HDel(ctx, joinsKey(guildID), userID).Err()
}
