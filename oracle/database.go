package oracle

import (
	"context"
	"fmt"
)

// Database is the direct-lookup strategy: the account store itself is the
// authority. Functionally equivalent to [Remote] but synchronous and
// in-process, so its failures are genuine hard failures rather than a
// fail-open trigger.
type Database struct {
	lookup UserLookup
}

// NewDatabase wraps the account store lookup.
func NewDatabase(lookup UserLookup) *Database {
	return &Database{lookup: lookup}
}

// Check reads the on-file stamp and compares. Lookup errors surface as
// [ErrLookupFailed] (fail closed).
func (d *Database) Check(ctx context.Context, userID string, issuedAt, passwordChangedAt int64) error {
	record, err := d.lookup.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if record.PasswordChangedAt > 0 &&
		effectiveTimestamp(issuedAt, passwordChangedAt) < record.PasswordChangedAt {
		return ErrTokenInvalidated
	}
	return nil
}
