package goTokenGate

import (
	"errors"
	"fmt"
	"log/slog"

	internalaudit "github.com/MrEthical07/goTokenGate/internal/audit"
	"github.com/MrEthical07/goTokenGate/authority"
	"github.com/MrEthical07/goTokenGate/oracle"
	"github.com/MrEthical07/goTokenGate/token"
)

// Builder assembles a [Gate]. A Builder is single-use: after Build returns it
// must not be reused.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	userLookup UserLookup
	authClient AuthorityClient
	auditSink  AuditSink
	logger     *slog.Logger

	built bool
}

// New creates a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale. Call it before
// any other With* option.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithUserLookup injects the account-store capability required by the
// direct-database oracle strategy.
func (b *Builder) WithUserLookup(lookup UserLookup) *Builder {
	b.userLookup = lookup
	return b
}

// WithAuthorityClient injects a remote-authority client, overriding the
// HTTP client the builder would otherwise construct from
// [AuthorityConfig].BaseURL.
func (b *Builder) WithAuthorityClient(client AuthorityClient) *Builder {
	b.authClient = client
	return b
}

// WithAuditSink sets the destination for audit events. Ignored unless
// [AuditConfig].Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histogram collection. Implies
// metrics collection when enabled.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	if enabled {
		b.config.Metrics.Enabled = true
	}
	return b
}

// Build validates the configuration, wires the selected oracle strategy and
// returns a ready [Gate].
func (b *Builder) Build() (*Gate, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	manager, err := token.NewManager(token.Config{
		Lifetime:      b.config.Token.Lifetime,
		SigningMethod: token.SigningMethod(b.config.Token.SigningMethod),
		PrivateKey:    b.config.Token.PrivateKey,
		PublicKey:     b.config.Token.PublicKey,
		Issuer:        b.config.Token.Issuer,
		Leeway:        b.config.Token.Leeway,
		Now:           b.config.Token.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("token codec init failed: %w", err)
	}

	authClient := b.authClient
	if authClient == nil && b.config.Authority.BaseURL != "" {
		client, err := authority.NewClient(b.config.Authority.BaseURL, nil, b.config.Authority.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("authority client init failed: %w", err)
		}
		authClient = client
	}

	var checker oracle.Oracle
	switch b.config.Oracle.Strategy {
	case OracleEmbedded:
		checker = oracle.NewEmbedded()
	case OracleRemote:
		if authClient == nil {
			return nil, errors.New("remote oracle strategy requires an authority client or Authority.BaseURL")
		}
		checker = oracle.NewRemote(authClient)
	case OracleDatabase:
		if b.userLookup == nil {
			return nil, errors.New("database oracle strategy requires a user lookup")
		}
		checker = oracle.NewDatabase(b.userLookup)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.auditSink)

	g := &Gate{
		config:    b.config,
		tokens:    manager,
		oracle:    checker,
		authority: authClient,
		logger:    logger,
		metrics:   NewMetrics(b.config.Metrics),
		audit:     dispatcher,
	}

	return g, nil
}
