package session

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultTTL = 24 * time.Hour
	targetKey  = "admin:target"
)

// MemoryStore keeps sessions in process. Idle sessions expire after the TTL.
type MemoryStore struct {
	c   *gocache.Cache
	ttl time.Duration
	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{c: gocache.New(ttl, ttl/2), ttl: ttl, now: time.Now}
}

func chatKey(chatID int64) string { return "chat:" + strconv.FormatInt(chatID, 10) }

func (m *MemoryStore) Get(_ context.Context, chatID int64) (Session, error) {
	v, ok := m.c.Get(chatKey(chatID))
	if !ok {
		return Session{Meta: map[string]string{}}, nil
	}
	return v.(Session).Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, chatID int64, s Session) error {
	s = s.Clone()
	s.UpdatedAt = m.now()
	m.c.Set(chatKey(chatID), s, m.ttl)
	return nil
}

func (m *MemoryStore) Target(context.Context) (int64, bool, error) {
	v, ok := m.c.Get(targetKey)
	if !ok {
		return 0, false, nil
	}
	return v.(int64), true, nil
}

func (m *MemoryStore) SetTarget(_ context.Context, chatID int64) error {
	m.c.Set(targetKey, chatID, gocache.NoExpiration)
	return nil
}

// Len reports live sessions, the target included.
func (m *MemoryStore) Len() int { return m.c.ItemCount() }
