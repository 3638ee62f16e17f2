package ratelimit

import (
	"testing"
	"time"
)

func TestKeyLimiter_LocksOutAfterThreshold(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewKeyLimiter()
	l.now = func() time.Time { return now }

	for i := 0; i < DefaultMaxFailedAttempts-1; i++ {
		l.RecordFailure("10.0.0.1")
	}
	if l.IsLocked("10.0.0.1") {
		t.Fatal("IsLocked() = true before threshold")
	}

	l.RecordFailure("10.0.0.1")
	if !l.IsLocked("10.0.0.1") {
		t.Fatal("IsLocked() = false after threshold")
	}
	if got := l.LockoutRemaining("10.0.0.1"); got != DefaultLockoutDuration {
		t.Errorf("LockoutRemaining() = %v, want %v", got, DefaultLockoutDuration)
	}
	if l.IsLocked("10.0.0.2") {
		t.Error("other client locked out")
	}

	// second lockout doubles
	now = now.Add(DefaultLockoutDuration + time.Second)
	if l.IsLocked("10.0.0.1") {
		t.Fatal("IsLocked() = true after lockout expired")
	}
	for i := 0; i < DefaultMaxFailedAttempts; i++ {
		l.RecordFailure("10.0.0.1")
	}
	if got := l.LockoutRemaining("10.0.0.1"); got != 2*DefaultLockoutDuration {
		t.Errorf("LockoutRemaining() = %v, want %v", got, 2*DefaultLockoutDuration)
	}
}

func TestKeyLimiter_SuccessAndCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewKeyLimiter()
	l.now = func() time.Time { return now }

	l.RecordFailure("a")
	l.RecordFailure("b")
	l.RecordSuccess("a")

	now = now.Add(time.Minute)
	l.Cleanup()

	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.lockouts) != 0 {
		t.Errorf("lockouts after cleanup = %d, want 0", len(l.lockouts))
	}
}

func TestKeyLimiter_CleanupDropsExpiredLockouts(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewKeyLimiter()
	l.now = func() time.Time { return now }

	for i := 0; i < DefaultMaxFailedAttempts; i++ {
		l.RecordFailure("10.0.0.1")
	}

	count := func() int {
		l.mu.RLock()
		defer l.mu.RUnlock()
		return len(l.lockouts)
	}

	l.Cleanup()
	if got := count(); got != 1 {
		t.Fatalf("lockouts while locked = %d, want 1", got)
	}

	// just expired: kept so the next lockout escalates
	now = now.Add(DefaultLockoutDuration + time.Second)
	l.Cleanup()
	if got := count(); got != 1 {
		t.Fatalf("lockouts right after expiry = %d, want 1", got)
	}

	now = now.Add(MaxLockoutDuration)
	l.Cleanup()
	if got := count(); got != 0 {
		t.Errorf("lockouts long after expiry = %d, want 0", got)
	}
}
