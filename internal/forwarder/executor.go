package forwarder

import (
	"context"
	"errors"
	"time"

	"github.com/blockedby/forwarder-os/internal/logger"
)

// rateLimitMargin is added on top of the platform's signaled wait.
const rateLimitMargin = time.Second

// Executor performs the forward call with retry-on-rate-limit semantics.
// The same logic serves batch and single-message forwards; only the
// message set differs.
type Executor struct {
	client MessageForwarder
	log    *logger.Logger

	// sleep is context-aware; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor over the given forwarding client.
func NewExecutor(client MessageForwarder, log *logger.Logger) *Executor {
	return &Executor{
		client: client,
		log:    log,
		sleep:  sleepCtx,
	}
}

// Forward copies the given messages from source to destination and returns
// the count the platform reports as forwarded.
//
// On a rate-limit signal carrying wait w it sleeps w plus a one second
// margin and retries exactly once; any retry error fails the whole attempt.
// Any other error fails immediately with no retry. History recording is the
// caller's responsibility, conditioned on success.
func (e *Executor) Forward(ctx context.Context, ids []int, fromChatID, toChatID int64) (int, error) {
	count, err := e.client.ForwardMessages(ctx, fromChatID, toChatID, ids)
	if err == nil {
		return count, nil
	}

	var limited *RateLimitedError
	if !errors.As(err, &limited) {
		return 0, err
	}

	wait := limited.Wait + rateLimitMargin
	e.log.Warn().
		Dur("wait", wait).
		Int64("from", fromChatID).
		Int64("to", toChatID).
		Msg("forward rate limited, retrying once after backoff")

	if err := e.sleep(ctx, wait); err != nil {
		return 0, err
	}

	count, err = e.client.ForwardMessages(ctx, fromChatID, toChatID, ids)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
