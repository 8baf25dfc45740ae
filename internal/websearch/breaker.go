package websearch

import (
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrCircuitOpen is returned without a request while a host is cooling down.
var ErrCircuitOpen = errors.New("circuit open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

type breakerEntry struct {
	state    breakerState
	failures int
	retryAt  time.Time
}

// Breaker tracks failing hosts in memory. Each failure doubles the cooldown from base up
// to max; a request after the cooldown is let through half-open and a success resets it.
type Breaker struct {
	mu          sync.Mutex
	hosts       map[string]*breakerEntry
	baseBackoff time.Duration
	maxBackoff  time.Duration
	now         func() time.Time
}

func NewBreaker(baseBackoff, maxBackoff time.Duration) *Breaker {
	if baseBackoff <= 0 {
		baseBackoff = 30 * time.Second
	}
	if maxBackoff < baseBackoff {
		maxBackoff = baseBackoff
	}
	return &Breaker{
		hosts:       make(map[string]*breakerEntry),
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
		now:         time.Now,
	}
}

// Allow reports whether a request to host may go out.
func (b *Breaker) Allow(host string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.hosts[host]
	if !ok || e.state != stateOpen {
		return true
	}
	if !b.now().Before(e.retryAt) {
		e.state = stateHalfOpen
		log.Info().Str("host", host).Msg("circuit breaker moved to HALF-OPEN")
		return true
	}
	return false
}

// Failure opens the breaker for host.
func (b *Breaker) Failure(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.hosts[host]
	if !ok {
		e = &breakerEntry{}
		b.hosts[host] = e
	}
	e.failures++

	backoff := b.baseBackoff
	for i := 1; i < e.failures; i++ {
		backoff *= 2
		if backoff > b.maxBackoff {
			backoff = b.maxBackoff
			break
		}
	}
	e.state = stateOpen
	e.retryAt = b.now().Add(backoff)

	log.Warn().
		Str("host", host).
		Dur("cooldown", backoff).
		Int("failures", e.failures).
		Time("retry_at", e.retryAt).
		Msg("circuit breaker OPENED")
}

// Success closes the breaker for host.
func (b *Breaker) Success(host string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.hosts[host]; !ok {
		return
	}
	delete(b.hosts, host)
	log.Info().Str("host", host).Msg("circuit breaker CLOSED (reset)")
}

// trips reports whether err says the host is unhealthy rather than the request being bad.
func trips(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	switch Classify(err) {
	case ClassTimeout, ClassNetwork:
		return true
	}
	return false
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
