package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Lookup when no record exists for the username.
	ErrNotFound = errors.New("credential record not found")
	// ErrUnavailable wraps backend failures (network, database, contention).
	ErrUnavailable = errors.New("credential store unavailable")
	// ErrCorrupt is returned when a persisted record cannot be decoded.
	ErrCorrupt = errors.New("credential record corrupt")
)

// Record is one user's current token state.
//
// Token is empty and IssuedAt is zero until the first assignment.
type Record struct {
	Username string
	Token    string
	IssuedAt time.Time
}

// HasToken reports whether a token has ever been assigned to the record.
func (r *Record) HasToken() bool {
	return r != nil && r.Token != ""
}

// Store is the full credential store contract implemented by every backend in
// this module.
type Store interface {
	// Lookup returns the record for username using an exact, case-sensitive
	// match. It returns ErrNotFound for unknown users.
	Lookup(ctx context.Context, username string) (*Record, error)

	// AssignToken sets the token and issue time on the record for username.
	// It is a silent no-op when the user is unknown.
	AssignToken(ctx context.Context, username, token string, issuedAt time.Time) error

	// Register creates a record with no token. Registering an existing user
	// leaves its token state untouched.
	Register(ctx context.Context, username string) error
}

func cloneRecord(r *Record) *Record {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}
