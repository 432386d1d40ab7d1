package forwarder

import (
	"errors"
	"fmt"
	"time"
)

// lifecycle errors
var (
	ErrAlreadyRunning = errors.New("forwarding is already running")
	ErrNoJobs         = errors.New("no forwarding jobs to run")
	ErrNotConnected   = errors.New("transport is not connected")
)

// RateLimitedError is a platform-imposed backoff signal carrying the wait
// duration the platform demanded. The executor handles it with a single
// sleep-and-retry; it is never surfaced past the executor.
type RateLimitedError struct {
	Wait time.Duration
	Err  error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited for %s: %v", e.Wait, e.Err)
}

func (e *RateLimitedError) Unwrap() error {
	return e.Err
}
