// Package oracle decides whether a verified token predates the account's last
// password change. Three interchangeable strategies exist; exactly one is
// selected at gate build time:
//
//   - [Embedded] — no I/O, compares the token's own claims. Cheap but weak:
//     it cannot retroactively invalidate tokens issued before a change.
//   - [Remote] — asks the invalidation authority. Its failures are reported
//     as [ErrUnavailable] so the gate can fail open.
//   - [Database] — reads the account store directly. Lookup failures are
//     [ErrLookupFailed] and the gate fails closed, because the account store
//     is already a hard dependency of every other endpoint.
//
// Strategies must never be combined for the same token: their invalidation
// windows are not composable.
package oracle
