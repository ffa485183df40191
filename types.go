package goPass

import (
	"context"
	"time"

	"github.com/MrEthical07/goPass/store"
)

// UserCredentialRecord is one user's current token state.
type UserCredentialRecord = store.Record

// CredentialStore is the part of the store contract the Engine needs to issue
// and check tokens.
//
// Lookup must return store.ErrNotFound (or an error wrapping it) for unknown
// users. AssignToken must be a silent no-op for unknown users.
type CredentialStore interface {
	Lookup(ctx context.Context, username string) (*UserCredentialRecord, error)
	AssignToken(ctx context.Context, username, token string, issuedAt time.Time) error
}

// Registrar is implemented by stores that can create users. Every store in
// this module implements it.
type Registrar interface {
	Register(ctx context.Context, username string) error
}

// VerifyOutcome classifies a completed verification.
type VerifyOutcome int

const (
	// VerifyAccepted means the token matched and had not expired.
	VerifyAccepted VerifyOutcome = iota
	// VerifyMismatch means the token differs from the stored token.
	VerifyMismatch
	// VerifyExpired means the token matched but its expiry instant has passed.
	VerifyExpired
	// VerifyNoToken means the user has never been issued a token.
	VerifyNoToken
)

func (o VerifyOutcome) String() string {
	switch o {
	case VerifyAccepted:
		return "accepted"
	case VerifyMismatch:
		return "mismatch"
	case VerifyExpired:
		return "expired"
	case VerifyNoToken:
		return "no_token"
	default:
		return "unknown"
	}
}
