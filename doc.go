// Package goPass issues and checks short-lived single-use tokens for named
// users.
//
// An [Engine] mints a random UUID for a registered user, records it with its
// issue time in a [CredentialStore], and later answers whether a presented
// token is the user's current token and is still within the expiry window.
// Generating a new token replaces the previous one.
//
// # Architecture boundaries
//
// goPass is the public surface. It exposes [Engine], [Builder], [Config] and
// the audit and metrics value types. Record persistence lives in the store
// package and its sub-packages; the Engine only talks to the
// [CredentialStore] interface.
//
// # Concurrency
//
// Engine methods are safe to call from multiple goroutines once constructed
// through [NewEngine], [NewEngineWithExpiry] or [Builder.Build]. Two
// concurrent Generate calls for the same user both succeed and the later
// store write wins.
package goPass
