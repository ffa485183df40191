package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "gp"

const assignMaxRetries = 4

var _ Store = (*RedisStore)(nil)

// RedisStore persists one versioned binary record per user under
// "<prefix>:<username>".
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a RedisStore. An empty prefix selects "gp".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(username string) string {
	return s.prefix + ":" + username
}

func (s *RedisStore) Lookup(ctx context.Context, username string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	if rec.Username != username {
		return nil, fmt.Errorf("%w: username mismatch", ErrCorrupt)
	}
	return rec, nil
}

// AssignToken rewrites the record inside a WATCH/MULTI transaction so a
// concurrent Register or AssignToken cannot be lost. A missing key is left
// missing.
func (s *RedisStore) AssignToken(ctx context.Context, username, token string, issuedAt time.Time) error {
	key := s.key(username)

	for i := 0; i < assignMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}

			rec, err := decodeRecord(data)
			if err != nil {
				return err
			}
			rec.Token = token
			rec.IssuedAt = issuedAt

			updated, err := encodeRecord(rec)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if errors.Is(err, ErrCorrupt) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	}

	return fmt.Errorf("%w: assign token contention", ErrUnavailable)
}

func (s *RedisStore) Register(ctx context.Context, username string) error {
	encoded, err := encodeRecord(&Record{Username: username})
	if err != nil {
		return err
	}
	if err := s.redis.SetNX(ctx, s.key(username), encoded, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
