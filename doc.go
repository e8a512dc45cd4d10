// Package goTokenGate provides the authentication core for token-guarded
// services: a signed-claims token codec, a pluggable invalidation oracle, and
// a single authentication gate shared by HTTP and realtime transports.
//
// The package is designed for concurrent server workloads: Gate methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goTokenGate is the public surface. It exposes [Gate], [Builder], [Config],
// and value types (Identity, MetricsSnapshot, AuditEvent). Flow orchestration
// and audit dispatch live under internal/ and are never exported. Transport
// adapters live in middleware/ and realtime/ and only translate their
// protocol's semantics into [Gate.Authenticate] calls.
//
// # What this package must NOT do
//
//   - Expose the underlying JWT library or claim encoding in its public API.
//   - Surface oracle unavailability to callers (the remote strategy fails
//     open and the decision stays internal).
//   - Store or log raw token strings anywhere.
//
// # Performance contract
//
// Authenticate is the hot path. With the claim-embedded oracle strategy it
// performs no I/O; the remote and database strategies are allowed one
// round-trip per call.
package goTokenGate
