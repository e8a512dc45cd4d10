package oracle

import (
	"context"
	"errors"
)

var (
	// ErrTokenInvalidated is returned when the token's effective timestamp
	// predates the authoritative password-changed-at stamp.
	ErrTokenInvalidated = errors.New("token predates password change")
	// ErrUnavailable is returned by the remote strategy when the authority
	// cannot be reached. The gate treats it as the fail-open trigger.
	ErrUnavailable = errors.New("invalidation oracle unavailable")
	// ErrLookupFailed is returned by the database strategy when the account
	// store errors. The gate treats it as a hard failure.
	ErrLookupFailed = errors.New("invalidation lookup failed")
)

// Oracle answers one question per authenticated request: was this token issued
// before the user's last password change? issuedAt and passwordChangedAt come
// from the verified claims; passwordChangedAt is zero when the token carries
// no snapshot. Effective timestamp = snapshot when present, else issuedAt.
type Oracle interface {
	Check(ctx context.Context, userID string, issuedAt, passwordChangedAt int64) error
}

// UserLookup is the narrow slice of the account store the database strategy
// needs: the password-change stamp by user id.
type UserLookup interface {
	// FindUserByID returns the account's password-changed-at stamp in whole
	// Unix seconds, zero when the password was never changed.
	FindUserByID(ctx context.Context, userID string) (UserRecord, error)
}

// UserRecord is the read-only account projection consumed by the database
// strategy.
type UserRecord struct {
	ID                string
	Email             string
	PasswordChangedAt int64
}

func effectiveTimestamp(issuedAt, passwordChangedAt int64) int64 {
	if passwordChangedAt > 0 {
		return passwordChangedAt
	}
	return issuedAt
}
