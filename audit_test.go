package goCred

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goCred/store"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func buildAuditTestService(t *testing.T, sink AuditSink, enabled bool) *Service {
	t.Helper()

	cfg := serviceTestConfig()
	cfg.Audit.Enabled = enabled
	cfg.Audit.BufferSize = 32
	cfg.Audit.DropIfFull = false

	svc, err := New().WithConfig(cfg).WithStore(newTestFileStore(t)).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func collectEvents(ch <-chan AuditEvent, want int) []AuditEvent {
	events := make([]AuditEvent, 0, want)
	timeout := time.After(2 * time.Second)
	for len(events) < want {
		select {
		case ev := <-ch:
			events = append(events, ev)
		case <-timeout:
			return events
		}
	}
	return events
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	sink := &countingSink{}
	svc := buildAuditTestService(t, sink, false)

	_, _ = svc.Register(context.Background(), "alice", "", "hunter2")
	_, _ = svc.Authenticate(context.Background(), "alice", "wrong")
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditEventsCarryFields(t *testing.T) {
	sink := NewChannelSink(8)
	svc := buildAuditTestService(t, sink, true)

	ctx := WithClientIP(context.Background(), "198.51.100.33")
	if _, err := svc.Register(ctx, "alice", "", "hunter2"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, _ = svc.Authenticate(ctx, "alice", "wrong")

	events := collectEvents(sink.Events(), 2)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	reg, auth := events[0], events[1]
	if reg.EventType != AuditEventRegister || !reg.Success || reg.Engine != "keyed-transposition" {
		t.Fatalf("unexpected register event %+v", reg)
	}
	if auth.EventType != AuditEventAuthenticate || auth.Success {
		t.Fatalf("unexpected authenticate event %+v", auth)
	}
	if auth.IP != "198.51.100.33" || auth.Username != "alice" {
		t.Fatalf("unexpected identity fields %+v", auth)
	}
	if auth.Error != string(auditErrInvalidCredentials) || auth.Metadata["reason"] != "password_mismatch" {
		t.Fatalf("unexpected error fields %+v", auth)
	}
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	sink := NewChannelSink(32)
	svc := buildAuditTestService(t, sink, true)
	ctx := context.Background()

	rec, err := svc.Register(ctx, "alice", "", "correct-horse")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, _ = svc.Authenticate(ctx, "alice", "wrong-horse")
	if err := svc.ChangePassword(ctx, "alice", "correct-horse", "battery-staple"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	needles := []string{"correct-horse", "wrong-horse", "battery-staple", rec.Hash(), rec.Salt()}
	events := collectEvents(sink.Events(), 3)
	if len(events) == 0 {
		t.Fatal("expected at least one audit event")
	}

	for _, ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			t.Fatalf("marshal event: %v", err)
		}
		for _, needle := range needles {
			if bytes.Contains(line, []byte(needle)) {
				t.Fatalf("sensitive value leaked in audit event: %q", needle)
			}
		}
	}
}

func TestAuditBufferFullDropIfFullTrueDoesNotBlock(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	start := time.Now()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected non-blocking emit when DropIfFull is true")
	}
	if dispatcher.Dropped() == 0 {
		t.Fatal("expected dropped counter to increment when queue is full")
	}
}

func TestAuditBufferFullDropIfFullFalseBlocksUntilSpace(t *testing.T) {
	sink := newGateSink()
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: false,
	}, sink)
	defer func() {
		close(sink.gate)
		dispatcher.Close()
	}()

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	done := make(chan struct{})
	go func() {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e3"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected emit to block while buffer is full")
	case <-time.After(150 * time.Millisecond):
	}

	sink.gate <- struct{}{}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected blocked emit to proceed after space is available")
	}
}

func TestAuditDispatcherCloseFlushesQueued(t *testing.T) {
	sink := &countingSink{}
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 16,
	}, sink)

	for i := 0; i < 10; i++ {
		dispatcher.Emit(context.Background(), AuditEvent{EventType: "e"})
	}
	dispatcher.Close()

	if sink.Count() != 10 {
		t.Fatalf("expected 10 delivered events, got %d", sink.Count())
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, &countingSink{})

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})
}

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: AuditEventRegister,
		Username:  "alice",
		Engine:    "argon2id",
		Success:   true,
	})
	sink.Emit(context.Background(), AuditEvent{EventType: AuditEventDelete, Username: "bob"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var got AuditEvent
	if err := json.Unmarshal(lines[0], &got); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if got.EventType != AuditEventRegister || got.Username != "alice" || got.Engine != "argon2id" {
		t.Fatalf("unexpected decoded event %+v", got)
	}
}

func TestAuditErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrInvalidCredentials, auditErrInvalidCredentials},
		{ErrLoginRateLimited, auditErrRateLimited},
		{ErrRecordExists, auditErrDuplicate},
		{ErrRecordNotFound, auditErrNotFound},
		{ErrPasswordTooLong, auditErrPasswordTooLong},
		{ErrPasswordReuse, auditErrPasswordReuse},
		{ErrEngineUnavailable, auditErrEngineUnavailable},
		{store.ErrMalformed, auditErrInvalidRecord},
		{store.ErrUnavailable, auditErrUnavailable},
		{context.DeadlineExceeded, auditErrUnavailable},
		{errors.New("boom"), auditErrInternal},
	}

	for _, tc := range tests {
		if got := auditErrorCode(tc.err); got != tc.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}
