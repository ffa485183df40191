package goPass

import (
	"context"
	"errors"
)

const (
	auditEventTokenGenerated      = "token_generated"
	auditEventTokenGenerateFailed = "token_generate_failed"
	auditEventTokenVerified       = "token_verified"
	auditEventTokenVerifyFailed   = "token_verify_failed"
	auditEventUserRegistered      = "user_registered"
	auditEventUserRegisterFailed  = "user_register_failed"
)

// AuditErrorCode is the value of AuditEvent.Error for failed operations.
type AuditErrorCode string

const (
	auditErrInvalidIdentity      AuditErrorCode = "invalid_identity"
	auditErrUnknownIdentity      AuditErrorCode = "unknown_identity"
	auditErrInvalidCredential    AuditErrorCode = "invalid_credential"
	auditErrMalformedCredential  AuditErrorCode = "malformed_credential"
	auditErrRegistrationRejected AuditErrorCode = "registration_unsupported"
	auditErrUnavailable          AuditErrorCode = "backend_unavailable"
	auditErrTokenMismatch        AuditErrorCode = "token_mismatch"
	auditErrTokenExpired         AuditErrorCode = "token_expired"
	auditErrTokenMissing         AuditErrorCode = "no_token"
	auditErrInternal             AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	username string,
	code AuditErrorCode,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	e.audit.Emit(ctx, AuditEvent{
		Timestamp: e.clock.Now(),
		EventType: eventType,
		Username:  username,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Error:     string(code),
		Metadata:  metadata,
	})
}

func (e *Engine) emitVerifyOutcome(ctx context.Context, username string, outcome VerifyOutcome) {
	if outcome == VerifyAccepted {
		e.emitAudit(ctx, auditEventTokenVerified, true, username, "", nil)
		return
	}

	var code AuditErrorCode
	switch outcome {
	case VerifyMismatch:
		code = auditErrTokenMismatch
	case VerifyExpired:
		code = auditErrTokenExpired
	case VerifyNoToken:
		code = auditErrTokenMissing
	}
	e.emitAudit(ctx, auditEventTokenVerifyFailed, false, username, code, func() map[string]string {
		return map[string]string{"reason": outcome.String()}
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidIdentity):
		return auditErrInvalidIdentity
	case errors.Is(err, ErrUnknownIdentity):
		return auditErrUnknownIdentity
	case errors.Is(err, ErrInvalidCredential):
		return auditErrInvalidCredential
	case errors.Is(err, ErrMalformedCredential):
		return auditErrMalformedCredential
	case errors.Is(err, ErrRegistrationUnsupported):
		return auditErrRegistrationRejected
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
