package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// RemoteResult is a verdict from the distributed sliding-window service.
type RemoteResult struct {
	Allowed   bool
	Reset     time.Time // when the window frees up; meaningful when !Allowed
	Remaining int
}

// RemoteLimiter is the distributed rate-limit collaborator.
type RemoteLimiter interface {
	Allow(ctx context.Context, identifier string) (RemoteResult, error)
}

// DialFunc constructs the remote limiter on first use. Returning (nil, nil)
// means the service is not configured; both that and a construction error
// disable the remote path for the process lifetime.
type DialFunc func() (RemoteLimiter, error)

type breakerState int

const (
	stateUninitialized breakerState = iota
	stateDisabled
	stateHealthy
	stateCooling
)

// DefaultCooldown is how long the breaker skips the remote service after a failure.
const DefaultCooldown = 60 * time.Second

// Limiter fronts the distributed service with a circuit breaker and falls
// back to a local in-memory limiter whenever the service is unavailable,
// misconfigured, or cooling down after a failure. It trades strict accuracy
// for availability: a misbehaving remote degrades to single-instance
// limiting instead of failing the request.
type Limiter struct {
	mu       sync.Mutex
	state    breakerState
	failedAt time.Time
	cooldown time.Duration
	remote   RemoteLimiter
	dial     DialFunc
	local    *MemoryLimiter
	logger   *slog.Logger
	now      func() time.Time
}

// NewLimiter creates a Limiter. The remote service is not contacted until the
// first Check call.
func NewLimiter(dial DialFunc, local *MemoryLimiter, logger *slog.Logger) *Limiter {
	return &Limiter{
		state:    stateUninitialized,
		cooldown: DefaultCooldown,
		dial:     dial,
		local:    local,
		logger:   logger,
		now:      time.Now,
	}
}

// Check returns a rate-limit verdict for identifier. A remote failure records
// a cooldown and the same call still receives a verdict from the local
// limiter; the error never surfaces to the caller.
func (l *Limiter) Check(ctx context.Context, identifier string) Result {
	remote := l.acquireRemote()
	if remote == nil {
		return l.local.Check(identifier)
	}

	res, err := remote.Allow(ctx, identifier)
	if err != nil {
		l.recordFailure(err)
		return l.local.Check(identifier)
	}

	if !res.Allowed {
		retry := int(math.Ceil(res.Reset.Sub(l.now()).Seconds()))
		return Result{Limited: true, RetryAfter: retry}
	}
	return Result{Remaining: res.Remaining}
}

// acquireRemote resolves the breaker state and returns the remote limiter to
// use, or nil to delegate locally. The lock is released before any network
// call happens.
func (l *Limiter) acquireRemote() RemoteLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case stateUninitialized:
		remote, err := l.dial()
		if err != nil || remote == nil {
			// Both "not configured" and "failed to construct" are cached for
			// the process lifetime.
			l.state = stateDisabled
			if err != nil {
				l.logger.Error("distributed rate limiter unavailable, using in-memory fallback",
					slog.Any("error", err))
			} else {
				l.logger.Info("distributed rate limiter not configured, using in-memory fallback")
			}
			return nil
		}
		l.state = stateHealthy
		l.remote = remote
		return remote
	case stateDisabled:
		return nil
	case stateCooling:
		if l.now().Sub(l.failedAt) < l.cooldown {
			return nil
		}
		l.state = stateHealthy
		return l.remote
	default:
		return l.remote
	}
}

// recordFailure trips the breaker: remote checks are skipped until the
// cooldown elapses.
func (l *Limiter) recordFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = stateCooling
	l.failedAt = l.now()
	l.logger.Warn("distributed rate limit check failed, falling back to in-memory",
		slog.Any("error", err),
		slog.Duration("cooldown", l.cooldown))
}
