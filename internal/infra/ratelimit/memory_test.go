package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{Now: func() time.Time { return now }})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d denied within limit", i)
		}
		if decision.Remaining != 3-(i+1) {
			t.Errorf("remaining = %d after request %d", decision.Remaining, i)
		}
	}

	decision, err := limiter.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if decision.Allowed {
		t.Fatal("fourth request allowed")
	}
	if decision.ResetAt != now.Add(time.Minute) {
		t.Errorf("resetAt = %v", decision.ResetAt)
	}

	// A new window clears the count.
	now = now.Add(time.Minute + time.Second)
	decision, err = limiter.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("request denied after window rollover")
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	ctx := context.Background()

	if decision, _ := limiter.Allow(ctx, "a", 1, time.Minute); !decision.Allowed {
		t.Fatal("first request on key a denied")
	}
	if decision, _ := limiter.Allow(ctx, "a", 1, time.Minute); decision.Allowed {
		t.Fatal("second request on key a allowed")
	}
	if decision, _ := limiter.Allow(ctx, "b", 1, time.Minute); !decision.Allowed {
		t.Fatal("key b affected by key a")
	}
}

func TestMemoryLimiterZeroLimitDisables(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	decision, err := limiter.Allow(context.Background(), "k", 0, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !decision.Allowed {
		t.Fatal("zero limit should pass everything through")
	}
}

func TestMemoryLimiterEvictsExpiredAtCapacity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{
		Now:     func() time.Time { return now },
		MaxKeys: 2,
	})
	ctx := context.Background()

	if _, err := limiter.Allow(ctx, "a", 1, time.Minute); err != nil {
		t.Fatalf("allow a: %v", err)
	}
	if _, err := limiter.Allow(ctx, "b", 1, time.Minute); err != nil {
		t.Fatalf("allow b: %v", err)
	}
	if _, err := limiter.Allow(ctx, "c", 1, time.Minute); err == nil {
		t.Fatal("expected capacity error with live buckets")
	}

	// Expired buckets free capacity for new keys.
	now = now.Add(2 * time.Minute)
	if _, err := limiter.Allow(ctx, "c", 1, time.Minute); err != nil {
		t.Fatalf("allow c after expiry: %v", err)
	}
}
