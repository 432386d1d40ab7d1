package telegram

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterWait(t *testing.T) {
	t.Run("allows immediate request within burst", func(t *testing.T) {
		rl := NewRateLimiter(10, 1)

		start := time.Now()
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("first Wait() took %v, want near-instant", elapsed)
		}
	})

	t.Run("paces consecutive requests", func(t *testing.T) {
		rl := NewRateLimiter(20, 1)

		start := time.Now()
		for i := 0; i < 3; i++ {
			if err := rl.Wait(context.Background()); err != nil {
				t.Fatalf("Wait() unexpected error: %v", err)
			}
		}
		// 20 rps with burst 1 means two 50ms gaps for three requests
		if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
			t.Errorf("three Wait() calls took %v, want at least ~100ms", elapsed)
		}
	})

	t.Run("honors flood wait window", func(t *testing.T) {
		rl := NewRateLimiter(100, 1)
		rl.SetFloodWait(1)

		start := time.Now()
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
			t.Errorf("Wait() returned after %v, want roughly 1s flood pause", elapsed)
		}
	})

	t.Run("cancelled context aborts flood pause", func(t *testing.T) {
		rl := NewRateLimiter(100, 1)
		rl.SetFloodWait(30)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		if err := rl.Wait(ctx); err == nil {
			t.Fatal("Wait() error = nil, want context deadline error")
		}
	})
}
