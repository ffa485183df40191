package goPass

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goPass/store"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// spyStore counts calls into the wrapped store and can inject failures.
type spyStore struct {
	inner store.Store

	lookups atomic.Int64
	assigns atomic.Int64

	lookupErr error
	assignErr error
}

func newSpyStore() *spyStore {
	return &spyStore{inner: store.NewMemoryStore()}
}

func (s *spyStore) Lookup(ctx context.Context, username string) (*UserCredentialRecord, error) {
	s.lookups.Add(1)
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.inner.Lookup(ctx, username)
}

func (s *spyStore) AssignToken(ctx context.Context, username, token string, issuedAt time.Time) error {
	s.assigns.Add(1)
	if s.assignErr != nil {
		return s.assignErr
	}
	return s.inner.AssignToken(ctx, username, token, issuedAt)
}

func (s *spyStore) Register(ctx context.Context, username string) error {
	return s.inner.Register(ctx, username)
}

// lookupOnlyStore cannot register users.
type lookupOnlyStore struct {
	records map[string]*UserCredentialRecord
}

func (s *lookupOnlyStore) Lookup(_ context.Context, username string) (*UserCredentialRecord, error) {
	r, ok := s.records[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (s *lookupOnlyStore) AssignToken(_ context.Context, username, token string, issuedAt time.Time) error {
	if r, ok := s.records[username]; ok {
		r.Token = token
		r.IssuedAt = issuedAt
	}
	return nil
}

func newTestEngine(t *testing.T, s CredentialStore, clock Clock, expiry time.Duration) *Engine {
	t.Helper()

	engine, err := New().
		WithStore(s).
		WithClock(clock).
		WithExpiry(expiry).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func mustRegister(t *testing.T, e *Engine, usernames ...string) {
	t.Helper()
	for _, u := range usernames {
		if err := e.Register(context.Background(), u); err != nil {
			t.Fatalf("Register(%q): %v", u, err)
		}
	}
}

var errBackendDown = errors.New("backend down")
