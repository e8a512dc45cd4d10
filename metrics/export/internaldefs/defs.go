package internaldefs

import (
	goTokenGate "github.com/MrEthical07/goTokenGate"
)

// CounterDef defines a public type used by goTokenGate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goTokenGate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goTokenGate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goTokenGate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication gate.
var CounterDefs = []CounterDef{
	{ID: goTokenGate.MetricAuthnSuccess, Name: "gotokengate_authn_success_total", Help: "Accepted authentication attempts."},
	{ID: goTokenGate.MetricAuthnMissingCredential, Name: "gotokengate_authn_missing_credential_total", Help: "Attempts with no credential presented."},
	{ID: goTokenGate.MetricAuthnTokenInvalid, Name: "gotokengate_authn_token_invalid_total", Help: "Malformed or badly signed tokens."},
	{ID: goTokenGate.MetricAuthnTokenExpired, Name: "gotokengate_authn_token_expired_total", Help: "Tokens rejected as expired."},
	{ID: goTokenGate.MetricAuthnInvalidated, Name: "gotokengate_authn_invalidated_total", Help: "Tokens rejected for predating a password change."},
	{ID: goTokenGate.MetricAuthnLookupFailure, Name: "gotokengate_authn_lookup_failure_total", Help: "Fail-closed account store lookup failures."},
	{ID: goTokenGate.MetricOracleFailOpen, Name: "gotokengate_oracle_fail_open_total", Help: "Requests accepted despite an unreachable invalidation authority."},
	{ID: goTokenGate.MetricTokenIssued, Name: "gotokengate_token_issued_total", Help: "Issued tokens."},
	{ID: goTokenGate.MetricPasswordChangeRecorded, Name: "gotokengate_password_change_recorded_total", Help: "Password-change stamps recorded with the authority."},
	{ID: goTokenGate.MetricUpgradeAccepted, Name: "gotokengate_upgrade_accepted_total", Help: "Accepted realtime upgrade handshakes."},
	{ID: goTokenGate.MetricUpgradeRefused, Name: "gotokengate_upgrade_refused_total", Help: "Refused realtime upgrade handshakes."},
}

// HistogramDefs is an exported constant or variable used by the authentication gate.
var HistogramDefs = []HistogramDef{
	{ID: goTokenGate.MetricAuthenticateLatency, Name: "gotokengate_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication gate.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication gate.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies a raw bucket slice into the fixed 8-bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
