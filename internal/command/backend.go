package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	goPass "github.com/MrEthical07/goPass"
	"github.com/MrEthical07/goPass/internal/confloader"
	"github.com/MrEthical07/goPass/store"
	"github.com/MrEthical07/goPass/store/sqlite"
)

const redisPingTimeout = 3 * time.Second

// openBackend returns the configured credential store and a function that
// releases it.
func openBackend(ctx context.Context, cfg confloader.Config, logger logrus.FieldLogger) (goPass.CredentialStore, func() error, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.WithField("backend", cfg.Store.Backend)

	switch cfg.Store.Backend {
	case confloader.BackendMemory:
		log.Debug("using in-memory credential store")
		return store.NewMemoryStore(), func() error { return nil }, nil

	case confloader.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Store.Redis.Addr, err)
		}
		log.WithField("addr", cfg.Store.Redis.Addr).Debug("connected to redis")
		return store.NewRedisStore(client, cfg.Store.Redis.Prefix), client.Close, nil

	case confloader.BackendSQLite:
		db, err := sqlite.Open(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.Store.SQLite.Path, err)
		}
		log.WithField("path", db.Path()).Debug("opened sqlite credential store")
		return sqlite.NewStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// newEngine maps the CLI configuration onto an engine. Audit events, when
// enabled, are written as JSON lines to auditOut.
func newEngine(cfg confloader.Config, s goPass.CredentialStore, logger logrus.FieldLogger, auditOut io.Writer) (*goPass.Engine, error) {
	engineCfg := goPass.DefaultConfig()
	engineCfg.Token.ExpiryDuration = cfg.Token.Expiry
	engineCfg.Audit.Enabled = cfg.Audit.Enabled
	engineCfg.Audit.BufferSize = cfg.Audit.BufferSize
	engineCfg.Metrics.Enabled = cfg.Metrics.Enabled

	b := goPass.New().
		WithConfig(engineCfg).
		WithStore(s).
		WithLogger(logger)
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(goPass.NewJSONWriterSink(auditOut))
	}
	return b.Build()
}
