package goCred

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher hands events to the sink from a single goroutine so a slow
// sink never runs on the caller's stack.
type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool

	queue   chan AuditEvent
	mu      sync.RWMutex // guards closing queue
	closed  bool
	stopped sync.WaitGroup
	dropped atomic.Uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan AuditEvent, max(cfg.BufferSize, 1)),
	}

	d.stopped.Add(1)
	go d.deliver()

	return d
}

// deliver runs until queue is closed and empty.
func (d *auditDispatcher) deliver() {
	defer d.stopped.Done()

	ctx := context.Background()
	for event := range d.queue {
		d.sink.Emit(ctx, event)
	}
}

// Emit queues event. With DropIfFull a full queue drops the event and counts it;
// otherwise Emit waits for room or for ctx to end. Events after Close are discarded.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	var cancelled <-chan struct{}
	if ctx != nil {
		cancelled = ctx.Done()
	}
	select {
	case d.queue <- event:
	case <-cancelled:
		d.dropped.Add(1)
	}
}

// Close waits for queued events to reach the sink. Repeated calls return at once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.stopped.Wait()
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
