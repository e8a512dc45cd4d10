package oracle

import (
	"context"
	"fmt"
)

// AuthorityClient is the transport the remote strategy calls. The concrete
// implementation lives in the authority package; the indirection exists so
// tests can fail the call deterministically.
type AuthorityClient interface {
	ValidateToken(ctx context.Context, userID string, tokenIssuedAt int64) (bool, error)
}

// Remote is the external-authority strategy: the authoritative stamp lives in
// the invalidation authority and every authenticated request performs one
// bounded remote call.
type Remote struct {
	client AuthorityClient
}

// NewRemote wraps an authority client.
func NewRemote(client AuthorityClient) *Remote {
	return &Remote{client: client}
}

// Check asks the authority whether the token's effective timestamp is still
// acceptable. Transport failures surface as [ErrUnavailable]; the gate's
// fail-open policy applies there, not here.
func (r *Remote) Check(ctx context.Context, userID string, issuedAt, passwordChangedAt int64) error {
	valid, err := r.client.ValidateToken(ctx, userID, effectiveTimestamp(issuedAt, passwordChangedAt))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !valid {
		return ErrTokenInvalidated
	}
	return nil
}
