package goTokenGate

import "errors"

var (
	// ErrMissingCredential is returned when no bearer token was presented.
	ErrMissingCredential = errors.New("credential required")
	// ErrTokenInvalid is returned for malformed tokens and bad signatures.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrTokenExpired is returned when the token is past its expiry. Clients
	// are expected to re-authenticate.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalidated is returned when signature and expiry are valid but
	// the token predates a password change. The message is deliberately
	// distinct so clients can tell "log in again" apart from "your password
	// changed, please log in again".
	ErrTokenInvalidated = errors.New("token invalidated due to password change")
	// ErrUserLookup is returned by the direct-database oracle strategy when
	// the account store errors. Fail-closed: the database is a hard dependency
	// of every other endpoint, so failing open here would be inconsistent.
	ErrUserLookup = errors.New("user lookup failed")
	// ErrGateNotReady is returned when a Gate method is called before Build.
	ErrGateNotReady = errors.New("gate not initialized")
	// ErrAuthorityRequired is returned by PasswordChanged when no authority is
	// wired and the configured strategy needs one.
	ErrAuthorityRequired = errors.New("invalidation authority not configured")
)
