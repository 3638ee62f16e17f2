// Package ratelimit locks out clients that keep presenting a wrong API key.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultMaxFailedAttempts = 5
	DefaultLockoutDuration   = 15 * time.Minute
	MaxLockoutDuration       = time.Hour
)

type clientLockout struct {
	failedAttempts int
	lockedUntil    time.Time
	lockoutCount   int
}

// KeyLimiter tracks failed API key attempts per client address. Each
// lockout lasts longer than the previous one, up to MaxLockoutDuration.
type KeyLimiter struct {
	mu       sync.RWMutex
	lockouts map[string]*clientLockout

	maxFailedAttempts   int
	baseLockoutDuration time.Duration
	now                 func() time.Time
}

// NewKeyLimiter creates a limiter with the default thresholds.
func NewKeyLimiter() *KeyLimiter {
	return &KeyLimiter{
		lockouts:            make(map[string]*clientLockout),
		maxFailedAttempts:   DefaultMaxFailedAttempts,
		baseLockoutDuration: DefaultLockoutDuration,
		now:                 time.Now,
	}
}

// IsLocked reports whether client is currently locked out.
func (l *KeyLimiter) IsLocked(client string) bool {
	return l.LockoutRemaining(client) > 0
}

// LockoutRemaining returns how long client stays locked out.
func (l *KeyLimiter) LockoutRemaining(client string) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lockout, exists := l.lockouts[client]
	if !exists {
		return 0
	}

	remaining := lockout.lockedUntil.Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordFailure counts a wrong key from client and locks it out once the
// threshold is reached.
func (l *KeyLimiter) RecordFailure(client string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	lockout, exists := l.lockouts[client]
	if !exists {
		lockout = &clientLockout{}
		l.lockouts[client] = lockout
	}

	if now.After(lockout.lockedUntil) && lockout.failedAttempts >= l.maxFailedAttempts {
		lockout.failedAttempts = 0
	}

	lockout.failedAttempts++

	if lockout.failedAttempts >= l.maxFailedAttempts {
		lockout.lockoutCount++
		duration := l.baseLockoutDuration * time.Duration(lockout.lockoutCount)
		if duration > MaxLockoutDuration {
			duration = MaxLockoutDuration
		}
		lockout.lockedUntil = now.Add(duration)
	}
}

// RecordSuccess forgets every failure of client.
func (l *KeyLimiter) RecordSuccess(client string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.lockouts, client)
}

// Cleanup drops entries that are below the failure threshold and not locked,
// and entries whose lockout ended more than MaxLockoutDuration ago. Recently
// expired lockouts are kept so a repeat offender still escalates.
func (l *KeyLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for client, lockout := range l.lockouts {
		if !now.After(lockout.lockedUntil) {
			continue
		}
		if lockout.failedAttempts < l.maxFailedAttempts || now.After(lockout.lockedUntil.Add(MaxLockoutDuration)) {
			delete(l.lockouts, client)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (l *KeyLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}
