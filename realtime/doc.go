// Package realtime exposes the WebSocket session boundary adapter built on
// top of goTokenGate.Gate authentication.
//
// Browsers cannot set arbitrary headers on a WebSocket handshake, so the
// token travels in a query parameter instead of the Authorization header.
// [UpgradeGuard] authenticates the handshake request and refuses the upgrade
// outright on failure; no socket is ever established for an unauthenticated
// caller. A connection authenticated at upgrade time stays trusted for its
// whole lifetime. Revocation of live connections goes through
// [Registry.DisconnectUser], not through re-validation.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Gate).
//   - Re-check token validity mid-connection.
package realtime
