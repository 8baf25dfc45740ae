package limiter

import (
	"context"
	"sync"
)

// Keyed serializes work per key (a chat id). Different keys proceed in parallel;
// waiters on one key are admitted one at a time.
type Keyed struct {
	mu  sync.Mutex
	sem map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{sem: map[string]*slot{}}
}

func (k *Keyed) acquireSlot(key string) *slot {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.sem[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.sem[key] = s
	}
	s.refs++
	return s
}

func (k *Keyed) releaseSlot(key string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.sem, key)
	}
}

// Lock blocks until the key is free or ctx is done. The returned release function
// must be called exactly once.
func (k *Keyed) Lock(ctx context.Context, key string) (func(), error) {
	s := k.acquireSlot(key)
	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				k.releaseSlot(key, s)
			})
		}, nil
	case <-ctx.Done():
		k.releaseSlot(key, s)
		return nil, ctx.Err()
	}
}

// Len reports how many keys are held or awaited. Surfaced as active_chats on /status.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.sem)
}
