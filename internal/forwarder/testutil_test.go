package forwarder

import (
	"context"
	"sync"
	"time"

	"github.com/blockedby/forwarder-os/internal/history"
	"github.com/blockedby/forwarder-os/internal/logger"
)

// fakeForwarder scripts the platform forward call.
type fakeForwarder struct {
	mu    sync.Mutex
	calls []forwardCall
	// errs are returned in order; once exhausted the call succeeds.
	errs []error
}

type forwardCall struct {
	ids  []int
	from int64
	to   int64
}

func (f *fakeForwarder) ForwardMessages(_ context.Context, from, to int64, ids []int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, forwardCall{ids: append([]int(nil), ids...), from: from, to: to})
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (f *fakeForwarder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// memHistory collects appended records in memory.
type memHistory struct {
	mu      sync.Mutex
	records []history.Record
	err     error
}

func (m *memHistory) Append(rec history.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memHistory) all() []history.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]history.Record, len(m.records))
	copy(out, m.records)
	return out
}

// memPublisher collects published events.
type memPublisher struct {
	mu     sync.Mutex
	events []ForwardEvent
}

func (m *memPublisher) PublishForward(_ context.Context, event ForwardEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// newTestDeps wires handler deps around the fake client, with an instant
// sleep so rate-limit retries don't slow tests down.
func newTestDeps(client *fakeForwarder) (HandlerDeps, *memHistory) {
	hist := &memHistory{}
	exec := NewExecutor(client, logger.Get())
	exec.sleep = func(context.Context, time.Duration) error { return nil }
	return HandlerDeps{
		Cache:    NewDedupCache(0),
		Executor: exec,
		History:  hist,
		Log:      logger.Get(),
	}, hist
}
