package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},  // base * 2^0 = 100ms
		{1, 200 * time.Millisecond},  // base * 2^1 = 200ms
		{2, 400 * time.Millisecond},  // base * 2^2 = 400ms
		{3, 800 * time.Millisecond},  // base * 2^3 = 800ms
		{4, 1600 * time.Millisecond}, // base * 2^4 = 1600ms
	}

	for _, tt := range tests {
		result := ExponentialBackoff(tt.attempt, base)
		if result != tt.expected {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, result, tt.expected)
		}
	}
}

func TestCappedBackoff(t *testing.T) {
	base := 1 * time.Second

	if got := CappedBackoff(1, base, 10*time.Second); got != 2*time.Second {
		t.Errorf("below cap: got %v, want 2s", got)
	}
	if got := CappedBackoff(6, base, 10*time.Second); got != 10*time.Second {
		t.Errorf("above cap: got %v, want 10s", got)
	}
	if got := CappedBackoff(6, base, 0); got != 64*time.Second {
		t.Errorf("zero cap should not clamp: got %v, want 64s", got)
	}
}
