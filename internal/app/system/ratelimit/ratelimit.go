// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts events per key in fixed windows. It is safe for
// concurrent use. Expired windows are swept on access, so a Limiter owns
// no goroutine and needs no Close.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	duration  time.Duration
	nextSweep time.Time
	now       func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New returns a limiter allowing limit events per key every duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records one event for key and reports whether it was within the
// limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many events key may still record in its window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if rem := l.limit - w.count; rem > 0 {
		return rem
	}
	return 0
}

// Exhausted reports whether key has no events left, without recording one.
func (l *Limiter) Exhausted(key string) bool {
	return l.Remaining(key) == 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// sweep drops expired windows at most once per duration. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for k, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, k)
		}
	}
	l.nextSweep = now.Add(l.duration)
}

// ClientIP returns the caller's address: the first X-Forwarded-For hop,
// then X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LaunchLimiter throttles rejected launch tokens per client address.
// Only failures count; a successful launch clears the address.
type LaunchLimiter struct {
	failures *Limiter
}

// NewLaunchLimiter allows maxFailures rejected launches per address every
// window.
func NewLaunchLimiter(maxFailures int, window time.Duration) *LaunchLimiter {
	return &LaunchLimiter{failures: New(maxFailures, window)}
}

// Blocked reports whether r's address has used up its failures.
func (ll *LaunchLimiter) Blocked(r *http.Request) bool {
	if ll == nil {
		return false
	}
	return ll.failures.Exhausted(ClientIP(r))
}

// Failed records a rejected launch from r's address.
func (ll *LaunchLimiter) Failed(r *http.Request) {
	if ll == nil {
		return
	}
	ll.failures.Allow(ClientIP(r))
}

// Succeeded clears r's address.
func (ll *LaunchLimiter) Succeeded(r *http.Request) {
	if ll == nil {
		return
	}
	ll.failures.Reset(ClientIP(r))
}
