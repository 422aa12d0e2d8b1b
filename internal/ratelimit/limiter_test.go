package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/nvandessel/netgen/internal/constants"
)

// fakeClock returns a limiter whose clock is advanced by the returned func.
func fakeClock(l *Limiter) func(time.Duration) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestAllow_Burst(t *testing.T) {
	l := NewLimiter(1.0, 3)
	fakeClock(l)

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Errorf("request %d should be allowed within burst", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("request after burst exhaustion should be rejected")
	}
}

func TestAllow_Refill(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		burst   int
		advance time.Duration
		allowed int
	}{
		{"one token after one second", 1.0, 2, time.Second, 1},
		{"refill capped at burst", 1.0, 2, time.Hour, 2},
		{"partial token is not enough", 1.0, 2, 500 * time.Millisecond, 0},
		{"zero rate never refills", 0, 1, time.Hour, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLimiter(tt.rate, tt.burst)
			advance := fakeClock(l)
			for i := 0; i < tt.burst; i++ {
				l.Allow("k")
			}
			advance(tt.advance)

			got := 0
			for l.Allow("k") {
				got++
				if got > tt.burst {
					break
				}
			}
			if got != tt.allowed {
				t.Errorf("allowed %d after refill, want %d", got, tt.allowed)
			}
		})
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	l := NewLimiter(0, 1)
	fakeClock(l)
	if !l.Allow("a") || !l.Allow("b") {
		t.Error("each key should have its own bucket")
	}
	if l.Allow("a") {
		t.Error("key a should be exhausted")
	}
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	l := NewLimiter(0, 50)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("k") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("allowed = %d, want 50", allowed)
	}
}

func TestNewToolLimiters(t *testing.T) {
	limiters := NewToolLimiters()
	for _, name := range []string{constants.ToolGenerate, constants.ToolGraph, constants.ToolValidate, constants.ToolEvents} {
		if limiters[name] == nil {
			t.Errorf("missing limiter for %s", name)
		}
	}
}

func TestCheckLimit(t *testing.T) {
	limiters := ToolLimiters{"slow": NewLimiter(0, 1)}

	if err := CheckLimit(limiters, "slow"); err != nil {
		t.Errorf("first call should pass: %v", err)
	}
	if err := CheckLimit(limiters, "slow"); err == nil {
		t.Error("second call should be rate limited")
	}
	if err := CheckLimit(limiters, "unlimited"); err != nil {
		t.Errorf("tool without limiter should pass: %v", err)
	}
}
