package goMFA

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goMFA/internal/stores"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine method call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store     ProfileStore
	sms       SMSChannel
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the full configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis wires the provided Redis-backed [ProfileStore].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithProfileStore substitutes a caller-owned credential store. Takes
// precedence over [Builder.WithRedis].
func (b *Builder) WithProfileStore(store ProfileStore) *Builder {
	b.store = store
	return b
}

// WithSMSChannel wires the SMS delivery collaborator and enables the SMS
// factor.
func (b *Builder) WithSMSChannel(ch SMSChannel) *Builder {
	b.sms = ch
	b.config.SMS.Enabled = true
	return b
}

// WithAuditSink wires the audit event sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles in-process metrics.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Verify latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the Engine. A Builder is
// single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("profile store or redis client required")
		}
		store = stores.NewRedisProfileStore(b.redis, cfg.Store.RedisPrefix)
	}

	if cfg.SMS.Enabled && b.sms == nil {
		return nil, errors.New("sms channel required when sms is enabled")
	}

	b.built = true

	return &Engine{
		config:  cfg,
		store:   store,
		sms:     b.sms,
		totp:    newTOTPManager(cfg.TOTP),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		now:     time.Now,
	}, nil
}
