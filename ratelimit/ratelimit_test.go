package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBlocksOverLimit(t *testing.T) {
	rl := NewLimiter(&Config{
		MaxRequests:     3,
		WindowSize:      time.Minute,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Errorf("fourth request should be blocked")
	}
	if !rl.Allow("10.0.0.2") {
		t.Errorf("other clients should not be affected")
	}
	if got := rl.Pending("10.0.0.1"); got != 3 {
		t.Errorf("Pending = %d, want 3", got)
	}
}

func TestLimiterWindowSlides(t *testing.T) {
	rl := NewLimiter(&Config{
		MaxRequests:     1,
		WindowSize:      20 * time.Millisecond,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	if !rl.Allow("client") {
		t.Fatalf("first request should be allowed")
	}
	if rl.Allow("client") {
		t.Fatalf("second request inside window should be blocked")
	}

	time.Sleep(30 * time.Millisecond)

	if !rl.Allow("client") {
		t.Errorf("request after window expiry should be allowed")
	}
}

func TestLimiterReset(t *testing.T) {
	rl := NewLimiter(&Config{
		MaxRequests:     1,
		WindowSize:      time.Minute,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	rl.Allow("client")
	rl.Reset("client")
	if !rl.Allow("client") {
		t.Errorf("reset should clear the recorded requests")
	}
}
