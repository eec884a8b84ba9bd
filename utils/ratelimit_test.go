package utils

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("client") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("client") {
		t.Error("request over the limit should be rejected")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	if !limiter.Allow("a") {
		t.Error("first request for a should be allowed")
	}
	if !limiter.Allow("b") {
		t.Error("first request for b should be allowed")
	}
	if limiter.Allow("a") {
		t.Error("second request for a should be rejected")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	if !limiter.Allow("client") {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("client") {
		t.Fatal("second request should be rejected")
	}

	time.Sleep(30 * time.Millisecond)
	if !limiter.Allow("client") {
		t.Error("request after the window should be allowed")
	}
}

func TestRateLimiterReset(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	limiter.Allow("client")
	limiter.Reset("client")
	if !limiter.Allow("client") {
		t.Error("request after reset should be allowed")
	}
}

func TestRateLimiterGetRemaining(t *testing.T) {
	limiter := NewRateLimiter(5, time.Minute)

	if got := limiter.GetRemaining("client"); got != 5 {
		t.Errorf("expected 5 remaining, got %d", got)
	}
	limiter.Allow("client")
	limiter.Allow("client")
	if got := limiter.GetRemaining("client"); got != 3 {
		t.Errorf("expected 3 remaining, got %d", got)
	}
}
