package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goPass/store"
)

// Compile-time interface satisfaction check.
var _ store.Store = (*Store)(nil)

// Store is the SQLite implementation of store.Store.
type Store struct {
	db *DB
}

// NewStore returns a Store over an opened, migrated DB.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Lookup(ctx context.Context, username string) (*store.Record, error) {
	const query = `SELECT username, token, issued_at FROM credentials WHERE username = ?`

	var (
		name     string
		token    sql.NullString
		issuedAt sql.NullInt64
	)
	err := s.db.Reader.QueryRowContext(ctx, query, username).Scan(&name, &token, &issuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup %q: %v", store.ErrUnavailable, username, err)
	}

	rec := &store.Record{Username: name}
	if token.Valid && token.String != "" {
		rec.Token = token.String
		if issuedAt.Valid {
			rec.IssuedAt = time.Unix(0, issuedAt.Int64).UTC()
		}
	}
	return rec, nil
}

// AssignToken updates the matching row. Zero affected rows (unknown user) is
// not an error.
func (s *Store) AssignToken(ctx context.Context, username, token string, issuedAt time.Time) error {
	const query = `UPDATE credentials SET token = ?, issued_at = ? WHERE username = ?`

	if _, err := s.db.Writer.ExecContext(ctx, query, token, issuedAt.UnixNano(), username); err != nil {
		return fmt.Errorf("%w: assign token %q: %v", store.ErrUnavailable, username, err)
	}
	return nil
}

func (s *Store) Register(ctx context.Context, username string) error {
	const query = `INSERT OR IGNORE INTO credentials (username) VALUES (?)`

	if _, err := s.db.Writer.ExecContext(ctx, query, username); err != nil {
		return fmt.Errorf("%w: register %q: %v", store.ErrUnavailable, username, err)
	}
	return nil
}

// Usernames returns every registered username in ascending order.
func (s *Store) Usernames(ctx context.Context) ([]string, error) {
	const query = `SELECT username FROM credentials ORDER BY username`

	rows, err := s.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list usernames: %v", store.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan username: %v", store.ErrUnavailable, err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate usernames: %v", store.ErrUnavailable, err)
	}
	return out, nil
}
