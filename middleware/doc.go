// Package middleware exposes the HTTP session boundary adapter built on top
// of goTokenGate.Gate authentication.
//
// # Guards
//
//   - [Guard] — reads the Authorization bearer header, calls
//     Gate.Authenticate, and injects the resulting identity into the request
//     context.
//
// Rejected requests receive 401 with a JSON body naming the failure, so
// clients can distinguish "log in again" from "your password changed".
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Gate calls. It does NOT
// implement authentication logic itself. All decisions are delegated to
// Gate.Authenticate.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Gate).
//   - Call the invalidation authority (Gate handles I/O).
//   - Make authorization decisions beyond pass/reject from Gate.Authenticate.
package middleware
