package goPass

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goPass/store"
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

func auditTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 32
	cfg.Audit.DropIfFull = false
	return cfg
}

func buildAuditTestEngine(t *testing.T, cfg Config, sink AuditSink) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithStore(store.NewMemoryStore()).
		WithClock(newFakeClock()).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

func collectEvents(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("expected %d audit events, got %d", n, len(events))
		}
	}
	return events
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = false

	sink := &countingSink{}
	engine := buildAuditTestEngine(t, cfg, sink)

	ctx := WithClientIP(context.Background(), "203.0.113.1")
	_ = engine.Register(ctx, "alice")
	_, _ = engine.Generate(ctx, "alice")
	engine.Close()

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditEnabledSinkReceivesEventWithFields(t *testing.T) {
	sink := NewChannelSink(16)
	engine := buildAuditTestEngine(t, auditTestConfig(), sink)
	defer engine.Close()

	ctx := WithClientIP(context.Background(), "203.0.113.7")
	if err := engine.Register(ctx, "alice"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := engine.Generate(ctx, "alice")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := engine.Verify(ctx, "alice", token); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	events := collectEvents(t, sink, 3)
	wantTypes := []string{auditEventUserRegistered, auditEventTokenGenerated, auditEventTokenVerified}
	for i, ev := range events {
		if ev.EventType != wantTypes[i] {
			t.Fatalf("event %d: type %q, want %q", i, ev.EventType, wantTypes[i])
		}
		if ev.Username != "alice" || ev.IP != "203.0.113.7" || !ev.Success {
			t.Fatalf("event %d: unexpected fields %+v", i, ev)
		}
		if !ev.Timestamp.Equal(testEpoch) {
			t.Fatalf("event %d: timestamp %v not from engine clock", i, ev.Timestamp)
		}
	}
}

func TestAuditVerifyFailureReasons(t *testing.T) {
	sink := NewChannelSink(16)
	engine := buildAuditTestEngine(t, auditTestConfig(), sink)
	defer engine.Close()

	ctx := context.Background()
	_ = engine.Register(ctx, "alice")
	_ = engine.Register(ctx, "carol")
	_, _ = engine.Generate(ctx, "alice")
	_ = collectEvents(t, sink, 3)

	_, _ = engine.Verify(ctx, "alice", "00000000-0000-0000-0000-000000000000")
	_, _ = engine.Verify(ctx, "carol", "00000000-0000-0000-0000-000000000000")
	_, _ = engine.Verify(ctx, "bob", "00000000-0000-0000-0000-000000000000")
	_, _ = engine.Verify(ctx, "alice", "nope")

	events := collectEvents(t, sink, 4)
	want := []struct {
		code   AuditErrorCode
		reason string
	}{
		{auditErrTokenMismatch, "mismatch"},
		{auditErrTokenMissing, "no_token"},
		{auditErrUnknownIdentity, ""},
		{auditErrMalformedCredential, ""},
	}
	for i, ev := range events {
		if ev.EventType != auditEventTokenVerifyFailed || ev.Success {
			t.Fatalf("event %d: expected failed verify, got %+v", i, ev)
		}
		if ev.Error != string(want[i].code) {
			t.Fatalf("event %d: error %q, want %q", i, ev.Error, want[i].code)
		}
		if ev.Metadata["reason"] != want[i].reason {
			t.Fatalf("event %d: reason %q, want %q", i, ev.Metadata["reason"], want[i].reason)
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

func TestAuditJSONWriterSinkWritesJSONLines(t *testing.T) {
	var buf syncBuffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: auditEventTokenGenerated,
		Username:  "alice",
		IP:        "127.0.0.1",
		Success:   true,
	})

	if !buf.Contains("token_generated") {
		t.Fatal("expected JSON log line to contain event type")
	}
	if !buf.Contains("\"username\":\"alice\"") {
		t.Fatal("expected JSON log line to contain username")
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Fatal("expected newline-terminated JSON line")
	}
}

func TestAuditDispatcherCloseIdempotentAndEmitAfterCloseSafe(t *testing.T) {
	sink := &countingSink{}
	dispatcher := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 4,
		DropIfFull: true,
	}, sink)

	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e1"})
	dispatcher.Close()
	dispatcher.Close()
	dispatcher.Emit(context.Background(), AuditEvent{EventType: "e2"})

	if sink.Count() != 1 {
		t.Fatalf("expected buffered event flushed on close and later event ignored, got %d", sink.Count())
	}
}

func TestAuditNoTokensInEvents(t *testing.T) {
	var buf syncBuffer
	engine := buildAuditTestEngine(t, auditTestConfig(), NewJSONWriterSink(&buf))

	ctx := context.Background()
	_ = engine.Register(ctx, "alice")
	token, err := engine.Generate(ctx, "alice")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	_, _ = engine.Verify(ctx, "alice", token)
	_, _ = engine.Verify(ctx, "alice", "0f8fad5b-d9cb-469f-a165-70867728950e")
	_, _ = engine.Verify(ctx, "alice", "not-a-token")
	engine.Close()

	if buf.String() == "" {
		t.Fatal("expected audit output")
	}
	for _, secret := range []string{token, "0f8fad5b-d9cb-469f-a165-70867728950e", "not-a-token"} {
		if buf.Contains(secret) {
			t.Fatalf("token value leaked into audit output: %q", secret)
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

func (b *syncBuffer) Contains(v string) bool {
	return strings.Contains(b.String(), v)
}
