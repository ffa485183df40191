package goPass

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goPass/internal"
	"github.com/MrEthical07/goPass/store"
	"github.com/sirupsen/logrus"
)

// Engine issues and checks tokens against a CredentialStore.
type Engine struct {
	config  Config
	store   CredentialStore
	clock   Clock
	logger  logrus.FieldLogger
	audit   *auditDispatcher
	metrics *Metrics
	ready   bool
}

// NewEngine returns an Engine over s with the default 30 second expiry.
func NewEngine(s CredentialStore) (*Engine, error) {
	return New().WithStore(s).Build()
}

// NewEngineWithExpiry returns an Engine over s whose tokens verify for d
// after issue. The duration applies to this Engine only.
func NewEngineWithExpiry(s CredentialStore, d time.Duration) (*Engine, error) {
	return New().WithStore(s).WithExpiry(d).Build()
}

// Expiry returns the token validity window.
func (e *Engine) Expiry() time.Duration {
	if e == nil {
		return 0
	}
	return e.config.Token.ExpiryDuration
}

// Close flushes and stops the audit dispatcher. The store is not closed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the Engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Generate issues a fresh token for username, replacing any previous one,
// and returns it in canonical lowercase UUID form.
//
// Errors: *CredentialError wrapping ErrInvalidIdentity or
// ErrUnknownIdentity, or an error wrapping ErrStoreUnavailable.
func (e *Engine) Generate(ctx context.Context, username string) (string, error) {
	if err := e.ensureReady(); err != nil {
		return "", err
	}

	if _, err := e.resolveIdentity(ctx, username); err != nil {
		e.generateFailed(ctx, username, err)
		return "", err
	}

	token, err := internal.NewToken()
	if err != nil {
		err = fmt.Errorf("generate token: %w", err)
		e.generateFailed(ctx, username, err)
		return "", err
	}

	issuedAt := e.clock.Now()
	if err := e.store.AssignToken(ctx, username, token, issuedAt); err != nil {
		err = e.storeFailure(ctx, "assign_token", username, err)
		e.generateFailed(ctx, username, err)
		return "", err
	}

	e.metricInc(MetricGenerateSuccess)
	e.emitAudit(ctx, auditEventTokenGenerated, true, username, "", nil)

	return token, nil
}

func (e *Engine) generateFailed(ctx context.Context, username string, err error) {
	e.metricInc(MetricGenerateFailure)
	e.emitAudit(ctx, auditEventTokenGenerateFailed, false, username, auditErrorCode(err), nil)
}

// Verify reports whether token is the current token for username and was
// issued less than Expiry ago. The reference time is read before any
// validation or store access. A wrong, expired or never-issued token yields
// false without an error.
//
// Errors: *CredentialError wrapping ErrInvalidIdentity, ErrUnknownIdentity,
// ErrInvalidCredential or ErrMalformedCredential, or an error wrapping
// ErrStoreUnavailable.
func (e *Engine) Verify(ctx context.Context, username, token string) (bool, error) {
	now := e.now()
	if err := e.ensureReady(); err != nil {
		return false, err
	}

	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricVerifyLatency, time.Since(start))
		}()
	}

	record, err := e.resolveIdentity(ctx, username)
	if err != nil {
		e.verifyRejected(ctx, username, err)
		return false, err
	}

	if err := validateToken(token); err != nil {
		e.verifyRejected(ctx, username, err)
		return false, err
	}

	outcome := e.evaluate(record, token, now)
	switch outcome {
	case VerifyAccepted:
		e.metricInc(MetricVerifySuccess)
	case VerifyMismatch:
		e.metricInc(MetricVerifyMismatch)
	case VerifyExpired:
		e.metricInc(MetricVerifyExpired)
	case VerifyNoToken:
		e.metricInc(MetricVerifyNoToken)
	}
	e.emitVerifyOutcome(ctx, username, outcome)

	return outcome == VerifyAccepted, nil
}

func (e *Engine) verifyRejected(ctx context.Context, username string, err error) {
	e.metricInc(MetricVerifyRejected)
	e.emitAudit(ctx, auditEventTokenVerifyFailed, false, username, auditErrorCode(err), nil)
}

// evaluate classifies token against record as of now. The token expires at
// IssuedAt+Expiry and is rejected from that instant on.
func (e *Engine) evaluate(record *UserCredentialRecord, token string, now time.Time) VerifyOutcome {
	if !record.HasToken() {
		return VerifyNoToken
	}
	if token != record.Token {
		return VerifyMismatch
	}
	if !record.IssuedAt.Add(e.config.Token.ExpiryDuration).After(now) {
		return VerifyExpired
	}
	return VerifyAccepted
}

// Register creates username in the store with no token. Registering an
// existing user leaves its current token untouched.
//
// Errors: *CredentialError wrapping ErrInvalidIdentity,
// ErrRegistrationUnsupported, or an error wrapping ErrStoreUnavailable.
func (e *Engine) Register(ctx context.Context, username string) error {
	if err := e.ensureReady(); err != nil {
		return err
	}

	err := e.register(ctx, username)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventUserRegisterFailed, false, username, auditErrorCode(err), nil)
		return err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventUserRegistered, true, username, "", nil)
	return nil
}

func (e *Engine) register(ctx context.Context, username string) error {
	if internal.IsBlank(username) {
		return invalidIdentityError(username)
	}

	registrar, ok := e.store.(Registrar)
	if !ok {
		return ErrRegistrationUnsupported
	}

	if err := registrar.Register(ctx, username); err != nil {
		return e.storeFailure(ctx, "register", username, err)
	}
	return nil
}

// resolveIdentity is the identity check shared by Generate and Verify. A
// blank username is rejected before the store is touched.
func (e *Engine) resolveIdentity(ctx context.Context, username string) (*UserCredentialRecord, error) {
	if internal.IsBlank(username) {
		return nil, invalidIdentityError(username)
	}

	record, err := e.store.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, unknownIdentityError(username)
		}
		return nil, e.storeFailure(ctx, "lookup", username, err)
	}
	if record == nil {
		return nil, unknownIdentityError(username)
	}

	return record, nil
}

func validateToken(token string) error {
	if internal.IsBlank(token) {
		return invalidCredentialError(token)
	}
	if err := internal.ParseToken(token); err != nil {
		return malformedCredentialError(token)
	}
	return nil
}

func (e *Engine) storeFailure(ctx context.Context, op, username string, err error) error {
	e.metricInc(MetricStoreError)
	e.logger.WithFields(logrus.Fields{
		"op":       op,
		"username": username,
		"ip":       clientIPFromContext(ctx),
	}).WithError(err).Warn("credential store failure")

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now().UTC()
	}
	return e.clock.Now()
}

func (e *Engine) ensureReady() error {
	if e == nil || !e.ready || e.store == nil {
		return ErrEngineNotReady
	}
	return nil
}
