package forwarder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blockedby/forwarder-os/internal/logger"
)

func newTestExecutor(client *fakeForwarder) (*Executor, *[]time.Duration) {
	exec := NewExecutor(client, logger.Get())
	var slept []time.Duration
	exec.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return exec, &slept
}

func TestExecutor_Forward(t *testing.T) {
	t.Run("success returns forwarded count", func(t *testing.T) {
		client := &fakeForwarder{}
		exec, slept := newTestExecutor(client)

		count, err := exec.Forward(context.Background(), []int{1, 2, 3}, 100, 200)
		if err != nil {
			t.Fatalf("Forward() unexpected error: %v", err)
		}
		if count != 3 {
			t.Errorf("Forward() = %d, want 3", count)
		}
		if len(*slept) != 0 {
			t.Errorf("slept %v, want no sleeps", *slept)
		}
	})

	t.Run("rate limit sleeps wait plus one second and retries once", func(t *testing.T) {
		client := &fakeForwarder{errs: []error{
			&RateLimitedError{Wait: 5 * time.Second, Err: errors.New("FLOOD_WAIT_5")},
		}}
		exec, slept := newTestExecutor(client)

		count, err := exec.Forward(context.Background(), []int{9}, 100, 200)
		if err != nil {
			t.Fatalf("Forward() unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("Forward() = %d, want 1", count)
		}
		if client.callCount() != 2 {
			t.Errorf("forward called %d times, want 2", client.callCount())
		}
		if len(*slept) != 1 || (*slept)[0] != 6*time.Second {
			t.Errorf("slept %v, want [6s]", *slept)
		}
	})

	t.Run("failed retry fails the whole attempt", func(t *testing.T) {
		retryErr := errors.New("still failing")
		client := &fakeForwarder{errs: []error{
			&RateLimitedError{Wait: time.Second, Err: errors.New("FLOOD_WAIT_1")},
			retryErr,
		}}
		exec, _ := newTestExecutor(client)

		_, err := exec.Forward(context.Background(), []int{9}, 100, 200)
		if !errors.Is(err, retryErr) {
			t.Errorf("Forward() error = %v, want %v", err, retryErr)
		}
		if client.callCount() != 2 {
			t.Errorf("forward called %d times, want exactly 2 (no further retries)", client.callCount())
		}
	})

	t.Run("non rate limit errors are not retried", func(t *testing.T) {
		permErr := errors.New("CHAT_WRITE_FORBIDDEN")
		client := &fakeForwarder{errs: []error{permErr}}
		exec, slept := newTestExecutor(client)

		_, err := exec.Forward(context.Background(), []int{1}, 100, 200)
		if !errors.Is(err, permErr) {
			t.Errorf("Forward() error = %v, want %v", err, permErr)
		}
		if client.callCount() != 1 {
			t.Errorf("forward called %d times, want 1", client.callCount())
		}
		if len(*slept) != 0 {
			t.Errorf("slept %v, want no sleeps", *slept)
		}
	})

	t.Run("cancelled context aborts the backoff", func(t *testing.T) {
		client := &fakeForwarder{errs: []error{
			&RateLimitedError{Wait: time.Second, Err: errors.New("FLOOD_WAIT_1")},
		}}
		exec := NewExecutor(client, logger.Get())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := exec.Forward(ctx, []int{1}, 100, 200)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Forward() error = %v, want context.Canceled", err)
		}
		if client.callCount() != 1 {
			t.Errorf("forward called %d times after cancel, want 1", client.callCount())
		}
	})
}
