package utils

import (
	"context"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "returns empty when limit non-positive", input: "hello world", limit: 0, expect: ""},
		{name: "shorter than limit", input: "hello", limit: 10, expect: "hello"},
		{name: "truncates and adds ellipsis", input: "hello world", limit: 5, expect: "hello..."},
		{name: "trims surrounding whitespace", input: "  spaced  ", limit: 5, expect: "space..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	if got := Backoff(0, time.Second, 10*time.Second); got != time.Second {
		t.Fatalf("expected 1s, got %s", got)
	}
	if got := Backoff(2, time.Second, 10*time.Second); got != 4*time.Second {
		t.Fatalf("expected 4s, got %s", got)
	}
	if got := Backoff(10, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("expected cap of 10s, got %s", got)
	}
}

func TestMeanAndRound(t *testing.T) {
	t.Parallel()

	if got := Mean(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
	if got := Round2(Mean([]float64{100, 50, 50})); got != 66.67 {
		t.Fatalf("expected 66.67, got %v", got)
	}
	if got := Clamp(120, 0, 100); got != 100 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
}

func TestWaitForHonoursContext(t *testing.T) {
	original := sleep
	sleep = func(time.Duration) { time.Sleep(50 * time.Millisecond) }
	defer func() { sleep = original }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); err == nil {
		t.Fatalf("expected context error")
	}
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected nil for zero duration, got %v", err)
	}
}
