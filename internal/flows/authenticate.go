package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goTokenGate/token"
)

// AuthFailureKind classifies authentication failures for root-level mapping.
type AuthFailureKind int

const (
	AuthFailureNone AuthFailureKind = iota
	AuthFailureMissingCredential
	AuthFailureTokenMalformed
	AuthFailureTokenExpired
	AuthFailureInvalidated
	AuthFailureLookup
)

// AuthResult carries a classified outcome. Claims is set whenever the token
// parsed, including oracle-stage failures. FailedOpen marks the one
// non-terminal path: the oracle was unreachable and the request proceeded
// anyway.
type AuthResult struct {
	Failure    AuthFailureKind
	Err        error
	Claims     *token.Claims
	FailedOpen bool
}

// AuthenticateDeps captures the gate's authentication dependencies. The
// sentinel fields let this package classify sub-package errors without
// importing the root package.
type AuthenticateDeps struct {
	Parse             func(string) (*token.Claims, error)
	CheckInvalidation func(ctx context.Context, userID string, issuedAt, passwordChangedAt int64) error

	TokenExpired      error
	OracleInvalidated error
	OracleUnavailable error
	OracleLookup      error
}

// RunAuthenticate executes one authentication attempt: verify signature and
// expiry, then consult the invalidation oracle. Each step is terminal on
// failure except oracle unavailability, which is the designed fail-open path.
// No state persists between invocations and nothing is mutated on any path.
func RunAuthenticate(ctx context.Context, tokenStr string, deps AuthenticateDeps) AuthResult {
	if tokenStr == "" {
		return AuthResult{Failure: AuthFailureMissingCredential}
	}

	claims, err := deps.Parse(tokenStr)
	if err != nil {
		if deps.TokenExpired != nil && errors.Is(err, deps.TokenExpired) {
			return AuthResult{Failure: AuthFailureTokenExpired, Err: err}
		}
		return AuthResult{Failure: AuthFailureTokenMalformed, Err: err}
	}

	var issuedAt int64
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Unix()
	}

	err = deps.CheckInvalidation(ctx, claims.UID, issuedAt, claims.PasswordChangedAt)
	switch {
	case err == nil:
		return AuthResult{Claims: claims}
	case deps.OracleInvalidated != nil && errors.Is(err, deps.OracleInvalidated):
		return AuthResult{Failure: AuthFailureInvalidated, Err: err, Claims: claims}
	case deps.OracleUnavailable != nil && errors.Is(err, deps.OracleUnavailable):
		// Fail open: availability over strictness for the remote authority.
		return AuthResult{Claims: claims, FailedOpen: true, Err: err}
	case deps.OracleLookup != nil && errors.Is(err, deps.OracleLookup):
		return AuthResult{Failure: AuthFailureLookup, Err: err, Claims: claims}
	default:
		return AuthResult{Failure: AuthFailureInvalidated, Err: err, Claims: claims}
	}
}
