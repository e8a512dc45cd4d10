package goTokenGate

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/goTokenGate/internal/audit"
	"github.com/MrEthical07/goTokenGate/oracle"
)

// Identity is the gate's output: the authenticated caller for the duration of
// one request or one realtime connection. It is never persisted and is owned
// exclusively by the request/connection context that created it.
type Identity struct {
	// UserID is the stable, opaque account identifier. Identity matching uses
	// this field only.
	UserID string
	// Email exists for display and logging; it is not used for identity
	// matching.
	Email string
}

// UserRecord is the read-only account projection the gate consumes from the
// external user-account store.
type UserRecord = oracle.UserRecord

// UserLookup is the narrow user-account-store capability consumed by the
// direct-database oracle strategy. The stamp it returns is written exactly
// once per successful password change, by the account store's own clock.
type UserLookup = oracle.UserLookup

// AuditEvent is a structured audit record emitted by the gate.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the gate's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// AuthorityClient is the remote-authority capability the gate consumes for
// the remote oracle strategy and for recording password changes.
type AuthorityClient interface {
	oracle.AuthorityClient
	SetPasswordChangedAt(ctx context.Context, userID string, changedAt int64) (int64, error)
}
