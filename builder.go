package goPass

import (
	"errors"
	"time"

	"github.com/MrEthical07/goPass/internal/logging"
	"github.com/sirupsen/logrus"
)

// Builder assembles an Engine. Configure it during initialization, call
// Build once, and discard it.
type Builder struct {
	config Config
	store  CredentialStore
	clock  Clock
	logger logrus.FieldLogger

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Later With* calls override
// individual fields.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the credential store. It is required.
func (b *Builder) WithStore(s CredentialStore) *Builder {
	b.store = s
	return b
}

// WithExpiry sets the token validity window for this Engine only.
func (b *Builder) WithExpiry(d time.Duration) *Builder {
	b.config.Token.ExpiryDuration = d
	return b
}

// WithClock overrides the time source. Defaults to SystemClock.
func (b *Builder) WithClock(c Clock) *Builder {
	b.clock = c
	return b
}

// WithLogger sets the logger used for store failures. Defaults to a logger
// that discards everything.
func (b *Builder) WithLogger(l logrus.FieldLogger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets the audit destination. Events are only dispatched when
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine. A Builder
// can be built only once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = SystemClock{}
	}

	logger := b.logger
	if logger == nil {
		logger = logging.Discard()
	}

	engine := &Engine{
		config:  cfg,
		store:   b.store,
		clock:   clock,
		logger:  logger.WithField("component", "gopass.engine"),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		ready:   true,
	}

	b.built = true

	return engine, nil
}
