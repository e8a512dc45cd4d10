package goTokenGate

import (
	"errors"
	"time"
)

// Config defines a public type used by goTokenGate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token     TokenConfig
	Oracle    OracleConfig
	Authority AuthorityConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
	Realtime  RealtimeConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goTokenGate APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	Lifetime      time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
	// Now overrides the clock used for issuing and verifying tokens. Nil
	// means time.Now.
	Now func() time.Time
}

/*
====================================
ORACLE CONFIG
====================================
*/

// OracleStrategy selects which invalidation oracle the gate runs. Exactly one
// strategy is active per process; their invalidation windows are not
// composable, so the gate never consults two strategies for the same token.
type OracleStrategy int

const (
	// OracleEmbedded compares the token's own password-changed-at snapshot
	// locally. No I/O, weakest guarantees.
	OracleEmbedded OracleStrategy = iota
	// OracleRemote consults the invalidation authority on every request and
	// fails OPEN when the authority is unreachable.
	OracleRemote
	// OracleDatabase reads the account store directly and fails CLOSED on
	// lookup errors.
	OracleDatabase
)

// OracleConfig defines a public type used by goTokenGate APIs.
//
// OracleConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OracleConfig struct {
	Strategy OracleStrategy
}

/*
====================================
AUTHORITY CONFIG
====================================
*/

// AuthorityConfig defines a public type used by goTokenGate APIs.
//
// AuthorityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthorityConfig struct {
	// BaseURL of the remote invalidation authority. Used only when no client
	// is injected via [Builder.WithAuthorityClient].
	BaseURL string
	// RequestTimeout bounds each authority call. Zero applies the client
	// default.
	RequestTimeout time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goTokenGate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goTokenGate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
REALTIME CONFIG
====================================
*/

// RealtimeConfig defines a public type used by goTokenGate APIs.
//
// RealtimeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RealtimeConfig struct {
	// TokenQueryParam names the query parameter carrying the bearer token in
	// the upgrade handshake, because the handshake cannot carry arbitrary
	// headers in all client environments.
	TokenQueryParam string
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration the Builder starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Lifetime:      time.Hour,
			SigningMethod: "ed25519",
			Leeway:        0,
		},
		Oracle: OracleConfig{
			Strategy: OracleRemote,
		},
		Authority: AuthorityConfig{
			RequestTimeout: 2 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Realtime: RealtimeConfig{
			TokenQueryParam: "token",
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks structural consistency. Key material is validated by the
// token codec during Build.
func (c *Config) Validate() error {
	if c.Token.Lifetime <= 0 {
		return errors.New("Token Lifetime must be > 0")
	}
	if c.Token.SigningMethod != "ed25519" && c.Token.SigningMethod != "hs256" {
		return errors.New("unsupported token signing method")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.Token.SigningMethod == "hs256" && len(c.Token.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	switch c.Oracle.Strategy {
	case OracleEmbedded, OracleRemote, OracleDatabase:
		// valid
	default:
		return errors.New("invalid oracle strategy")
	}

	if c.Authority.RequestTimeout < 0 {
		return errors.New("Authority RequestTimeout must be >= 0")
	}

	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	if c.Realtime.TokenQueryParam == "" {
		return errors.New("Realtime TokenQueryParam must not be empty")
	}

	return nil
}
