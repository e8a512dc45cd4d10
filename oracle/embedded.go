package oracle

import "context"

// Embedded is the claim-embedded strategy: the token carries its own
// password-changed-at snapshot and the check is a local comparison with no
// I/O. A token is rejected only when its issued-at precedes the snapshot it
// carries, which catches tokens minted from stale account state after a
// change. The strategy cannot invalidate tokens issued before the change
// itself; deployments that need retroactive invalidation use [Remote] or
// [Database].
type Embedded struct{}

// NewEmbedded returns the claim-embedded strategy.
func NewEmbedded() *Embedded {
	return &Embedded{}
}

// Check never performs I/O and never reports unavailability.
func (*Embedded) Check(_ context.Context, _ string, issuedAt, passwordChangedAt int64) error {
	if passwordChangedAt > 0 && issuedAt < passwordChangedAt {
		return ErrTokenInvalidated
	}
	return nil
}
