// Package msgcache remembers recent message content so edit and delete
// notifications can show what a message said before it changed.
package msgcache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is the cached snapshot of one message.
type Entry struct {
	MessageID  string    `json:"message_id"`
	ChannelID  string    `json:"channel_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CachedAt   time.Time `json:"cached_at"`
}

// Cache stores entries keyed by message ID. Get reports ok=false on a miss;
// errors are reserved for backend failures.
type Cache interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, messageID string) (Entry, bool, error)
	Delete(ctx context.Context, messageID string) error
}

var ErrNoMessageID = errors.New("msgcache: message id required")

// Memory is a process-local Cache with per-entry expiry and LRU eviction.
// It is used when redis is not configured.
type Memory struct {
	lru   *expirable.LRU[string, Entry]
	clock func() time.Time
}

// NewMemory keeps at most maxSize entries for ttl each. A zero ttl never
// expires entries.
func NewMemory(ttl time.Duration, maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Memory{lru: expirable.NewLRU[string, Entry](maxSize, nil, ttl), clock: time.Now}
}

func (m *Memory) Put(_ context.Context, e Entry) error {
	if e.MessageID == "" {
		return ErrNoMessageID
	}
	if e.CachedAt.IsZero() {
		e.CachedAt = m.clock()
	}
	m.lru.Add(e.MessageID, e)
	return nil
}

func (m *Memory) Get(_ context.Context, messageID string) (Entry, bool, error) {
	e, ok := m.lru.Get(messageID)
	return e, ok, nil
}

func (m *Memory) Delete(_ context.Context, messageID string) error {
	m.lru.Remove(messageID)
	return nil
}
