// Package store provides credential record persistence for the token engine:
// an in-memory map, a Redis-backed store, and (in store/sqlite) a durable
// SQLite store.
//
// # Record lifecycle
//
// A [Record] is created by [Store.Register] with no token. Only
// [Store.AssignToken] mutates it afterwards. Records are never deleted here.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control for credential
// records. It does NOT validate usernames, generate tokens, or decide whether a
// presented token is acceptable; the Engine does.
//
// # What this package must NOT do
//
//   - Import goPass or any internal package.
//   - Log token values.
//   - Return an error from AssignToken for an unknown user.
package store
