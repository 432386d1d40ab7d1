package forwarder

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockedby/forwarder-os/internal/models"
)

// Registry binds album and message handlers to their jobs' source chats and
// owns the run/stop lifecycle of the event subscription. Exactly one
// Registry exists per process.
type Registry struct {
	transport Transport
	deps      HandlerDeps

	mu       sync.Mutex
	running  bool
	cancelFn context.CancelFunc
	jobs     []models.Job
	done     chan error
}

// NewRegistry creates a registry over the given transport.
func NewRegistry(transport Transport, deps HandlerDeps) *Registry {
	return &Registry{
		transport: transport,
		deps:      deps,
	}
}

// Start registers one album handler and one message handler per job and
// begins serving events in a background goroutine. It refuses when already
// running or when the job list is empty. A connection failure is fatal to
// this call and resets the state to stopped.
//
// The serve loop's terminal error is surfaced via Done.
func (r *Registry) Start(ctx context.Context, jobs []models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}
	if len(jobs) == 0 {
		return ErrNoJobs
	}

	if err := r.transport.Connect(ctx); err != nil {
		return fmt.Errorf("connect transport: %w", err)
	}

	// Drop bindings from any previous run so repeated start/stop cycles
	// never register duplicate handlers.
	r.transport.ResetHandlers()

	snapshot := make([]models.Job, len(jobs))
	copy(snapshot, jobs)

	for _, job := range snapshot {
		album := NewAlbumHandler(job, r.deps)
		message := NewMessageHandler(job, r.deps)

		r.transport.OnAlbum(job.SourceChatIDs, func(ctx context.Context, ev AlbumEvent) {
			_ = album.Handle(ctx, ev) // errors contained to the invocation, logged inside
		})
		r.transport.OnNewMessage(job.SourceChatIDs, func(ctx context.Context, ev MessageEvent) {
			_ = message.Handle(ctx, ev)
		})
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.cancelFn = cancel
	r.jobs = snapshot
	r.running = true
	r.done = make(chan error, 1)

	r.deps.Log.Info().Int("jobs", len(snapshot)).Msg("forwarding started")

	go r.run(runCtx)

	return nil
}

// run serves events until the transport disconnects or Stop is called.
func (r *Registry) run(ctx context.Context) {
	err := r.transport.Run(ctx)

	r.mu.Lock()
	r.running = false
	r.cancelFn = nil
	done := r.done
	r.mu.Unlock()

	if err != nil {
		r.deps.Log.Error().Err(err).Msg("event loop terminated")
	} else {
		r.deps.Log.Info().Msg("event loop stopped")
	}

	done <- err
	close(done)
}

// Stop terminates the connection, causing the serve loop to return.
// Idempotent when already stopped. In-flight handler invocations are not
// force-cancelled; they complete or are abandoned without corrupting the
// cache.
func (r *Registry) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancelFn
	r.cancelFn = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.transport.Disconnect()
}

// Running reports whether the registry is serving events.
func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Jobs returns the jobs of the current (or last) run.
func (r *Registry) Jobs() []models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	jobs := make([]models.Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

// Done returns the completion channel of the current run: it yields the
// serve loop's terminal error (nil on clean stop) and is then closed.
// Returns nil when Start was never called.
func (r *Registry) Done() <-chan error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}
