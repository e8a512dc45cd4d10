package goTokenGate

import (
	"context"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/goTokenGate/internal/audit"
	"github.com/MrEthical07/goTokenGate/internal/flows"
	"github.com/MrEthical07/goTokenGate/oracle"
	"github.com/MrEthical07/goTokenGate/token"
)

// Audit event types emitted by the gate.
const (
	EventAuthnAccept     = "authn_accept"
	EventAuthnReject     = "authn_reject"
	EventAuthnFailOpen   = "authn_fail_open"
	EventTokenIssued     = "token_issued"
	EventPasswordChanged = "password_changed"
	EventUpgradeRefused  = "upgrade_refused"
)

// Gate is the authentication core: it issues tokens, verifies presented
// credentials and consults the configured invalidation oracle. One Gate is
// shared by all transports in a process.
//
// Gate instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Gate struct {
	config    Config
	tokens    *token.Manager
	oracle    oracle.Oracle
	authority AuthorityClient
	logger    *slog.Logger
	metrics   *Metrics
	audit     *internalaudit.Dispatcher
}

// Authenticate runs one full authentication attempt against the presented
// token string and returns the caller's identity on success. The decision is
// binary: either an identity comes back, or one of the package sentinel
// errors does. Oracle unavailability is absorbed here and never surfaced.
func (g *Gate) Authenticate(ctx context.Context, tokenStr string) (*Identity, error) {
	if g == nil || g.tokens == nil {
		return nil, ErrGateNotReady
	}

	start := time.Now()

	result := flows.RunAuthenticate(ctx, tokenStr, flows.AuthenticateDeps{
		Parse:             g.tokens.Parse,
		CheckInvalidation: g.oracle.Check,

		TokenExpired:      token.ErrTokenExpired,
		OracleInvalidated: oracle.ErrTokenInvalidated,
		OracleUnavailable: oracle.ErrUnavailable,
		OracleLookup:      oracle.ErrLookupFailed,
	})

	g.metrics.Observe(MetricAuthenticateLatency, time.Since(start))

	switch result.Failure {
	case flows.AuthFailureNone:
		// success, possibly fail-open
	case flows.AuthFailureMissingCredential:
		g.metrics.Inc(MetricAuthnMissingCredential)
		g.emitAudit(ctx, EventAuthnReject, "", false, ErrMissingCredential.Error())
		return nil, ErrMissingCredential
	case flows.AuthFailureTokenExpired:
		g.metrics.Inc(MetricAuthnTokenExpired)
		g.emitAudit(ctx, EventAuthnReject, "", false, ErrTokenExpired.Error())
		return nil, ErrTokenExpired
	case flows.AuthFailureTokenMalformed:
		g.metrics.Inc(MetricAuthnTokenInvalid)
		g.logger.Warn("rejected malformed token", "reason", result.Err)
		g.emitAudit(ctx, EventAuthnReject, "", false, ErrTokenInvalid.Error())
		return nil, ErrTokenInvalid
	case flows.AuthFailureInvalidated:
		g.metrics.Inc(MetricAuthnInvalidated)
		g.emitAudit(ctx, EventAuthnReject, claimsUID(result.Claims), false, ErrTokenInvalidated.Error())
		return nil, ErrTokenInvalidated
	case flows.AuthFailureLookup:
		g.metrics.Inc(MetricAuthnLookupFailure)
		g.logger.Error("account store lookup failed, rejecting", "err", result.Err)
		g.emitAudit(ctx, EventAuthnReject, claimsUID(result.Claims), false, ErrUserLookup.Error())
		return nil, ErrUserLookup
	}

	if result.FailedOpen {
		g.metrics.Inc(MetricOracleFailOpen)
		g.logger.Warn("invalidation authority unreachable, accepting token",
			"user_id", result.Claims.UID,
			"err", result.Err,
		)
		g.emitAudit(ctx, EventAuthnFailOpen, result.Claims.UID, true, "")
	}

	g.metrics.Inc(MetricAuthnSuccess)
	g.emitAudit(ctx, EventAuthnAccept, result.Claims.UID, true, "")

	return &Identity{
		UserID: result.Claims.UID,
		Email:  result.Claims.Email,
	}, nil
}

// Issue mints a signed token for the given user. passwordChangedAt is the
// account's current password-changed-at stamp in whole seconds; pass 0 when
// the password has never changed.
func (g *Gate) Issue(ctx context.Context, userID, email string, passwordChangedAt int64) (string, error) {
	if g == nil || g.tokens == nil {
		return "", ErrGateNotReady
	}

	tok, err := g.tokens.Issue(userID, email, passwordChangedAt)
	if err != nil {
		return "", err
	}

	g.metrics.Inc(MetricTokenIssued)
	g.emitAudit(ctx, EventTokenIssued, userID, true, "")

	return tok, nil
}

// PasswordChanged records a password change with the invalidation authority
// and returns the confirmed stamp. Tokens issued before the confirmed stamp
// are rejected on their next authentication attempt (subject to the active
// oracle strategy's guarantees).
func (g *Gate) PasswordChanged(ctx context.Context, userID string, changedAt int64) (int64, error) {
	if g == nil {
		return 0, ErrGateNotReady
	}
	if g.authority == nil {
		return 0, ErrAuthorityRequired
	}

	confirmed, err := g.authority.SetPasswordChangedAt(ctx, userID, changedAt)
	if err != nil {
		return 0, err
	}

	g.metrics.Inc(MetricPasswordChangeRecorded)
	g.emitAudit(ctx, EventPasswordChanged, userID, true, "")

	return confirmed, nil
}

// Metrics exposes the gate's in-process metrics for exporters.
func (g *Gate) Metrics() *Metrics {
	if g == nil {
		return nil
	}
	return g.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	return g.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped under backpressure.
func (g *Gate) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. The gate remains usable for
// authentication afterwards, but no further audit events are emitted.
func (g *Gate) Close() {
	if g == nil || g.audit == nil {
		return
	}
	g.audit.Close()
}

// RecordUpgrade records the outcome of a realtime upgrade handshake. The
// realtime adapter calls it once per handshake, after the gate decision.
func (g *Gate) RecordUpgrade(ctx context.Context, userID string, accepted bool) {
	if g == nil {
		return
	}
	if accepted {
		g.metrics.Inc(MetricUpgradeAccepted)
		return
	}
	g.metrics.Inc(MetricUpgradeRefused)
	g.emitAudit(ctx, EventUpgradeRefused, userID, false, "")
}

// RealtimeTokenParam returns the query parameter name realtime adapters read
// the token from.
func (g *Gate) RealtimeTokenParam() string {
	if g == nil {
		return ""
	}
	return g.config.Realtime.TokenQueryParam
}

func claimsUID(c *token.Claims) string {
	if c == nil {
		return ""
	}
	return c.UID
}

func (g *Gate) emitAudit(ctx context.Context, eventType, userID string, success bool, errMsg string) {
	if g.audit == nil {
		return
	}

	g.audit.Emit(ctx, internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Error:     errMsg,
	})
}
