package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Result is the verdict for a single request.
type Result struct {
	Limited    bool
	RetryAfter int // seconds until the window resets; set when Limited
	Remaining  int // requests left in the current window; set when not Limited
}

// record tracks one identifier's current window. lastSeen orders eviction.
type record struct {
	count    int
	resetAt  time.Time
	lastSeen time.Time
}

// MemoryLimiter is a fixed-window rate limiter held in process memory. The
// store is bounded: once capacity is reached, inserting a new identifier
// evicts the entry with the oldest lastSeen, so spoofed-identifier floods
// cannot grow the map without bound. Identifiers with an active window are
// never evicted mid-window because eviction only runs on the new-window
// insert path.
type MemoryLimiter struct {
	mu       sync.Mutex
	entries  map[string]*record
	limit    int
	window   time.Duration
	capacity int
	now      func() time.Time
}

// DefaultCapacity bounds the number of tracked identifiers.
const DefaultCapacity = 10_000

// NewMemoryLimiter creates a limiter allowing limit requests per identifier
// per window, tracking at most capacity identifiers.
func NewMemoryLimiter(limit int, window time.Duration, capacity int) *MemoryLimiter {
	return &MemoryLimiter{
		entries:  make(map[string]*record),
		limit:    limit,
		window:   window,
		capacity: capacity,
		now:      time.Now,
	}
}

// Check records a request for identifier and returns the verdict. The whole
// read-modify-write runs under the lock; no I/O happens while it is held.
func (l *MemoryLimiter) Check(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// Amortized cleanup: only sweep expired windows once the store has
	// outgrown its capacity, not on every call.
	if len(l.entries) > l.capacity {
		l.pruneExpired(now)
	}

	rec, exists := l.entries[identifier]
	isNewWindow := !exists || now.After(rec.resetAt)

	if isNewWindow {
		// Evict before inserting so capacity is never exceeded. The record
		// being reset is logically a fresh insert and is never an eviction
		// candidate itself.
		if len(l.entries) >= l.capacity {
			l.evictOldest(identifier)
		}
		l.entries[identifier] = &record{
			count:    1,
			resetAt:  now.Add(l.window),
			lastSeen: now,
		}
		return Result{Remaining: l.limit - 1}
	}

	rec.lastSeen = now

	if rec.count >= l.limit {
		retry := int(math.Ceil(rec.resetAt.Sub(now).Seconds()))
		return Result{Limited: true, RetryAfter: retry}
	}

	rec.count++
	return Result{Remaining: l.limit - rec.count}
}

// Len reports the number of tracked identifiers.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// pruneExpired drops every record whose window has passed. Caller holds the lock.
func (l *MemoryLimiter) pruneExpired(now time.Time) {
	for key, rec := range l.entries {
		if now.After(rec.resetAt) {
			delete(l.entries, key)
		}
	}
}

// evictOldest removes the record with the oldest lastSeen, skipping the
// identifier currently being processed. Caller holds the lock.
func (l *MemoryLimiter) evictOldest(current string) {
	var oldestKey string
	var oldestSeen time.Time
	found := false
	for key, rec := range l.entries {
		if key == current {
			continue
		}
		if !found || rec.lastSeen.Before(oldestSeen) {
			oldestKey = key
			oldestSeen = rec.lastSeen
			found = true
		}
	}
	if found {
		delete(l.entries, oldestKey)
	}
}
