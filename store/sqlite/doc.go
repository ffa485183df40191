// Package sqlite provides a durable credential store backed by SQLite
// (modernc.org/sqlite, no cgo) with schema migrations embedded in the binary.
//
// Writes go through a single-connection writer pool; reads use a small reader
// pool. Usernames are compared with SQLite's default BINARY collation, so
// lookups are exact and case-sensitive.
package sqlite
