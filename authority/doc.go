// Package authority implements the remote invalidation authority: the service
// holding the authoritative password-changed-at stamp per user, plus the HTTP
// client the gate's remote oracle strategy talks to.
//
// # Architecture boundaries
//
// The store owns the Redis key layout for stamps. The server translates HTTP
// semantics into store calls. The client is the only piece the authentication
// gate links against; it treats every transport failure, timeout, or non-200
// response as [ErrAuthorityUnavailable] so the gate can apply its fail-open
// policy.
//
// # What this package must NOT do
//
//   - Parse or verify bearer tokens (the codec owns that).
//   - Decide fail-open vs fail-closed (the gate owns policy).
package authority
