// Package token issues and verifies the signed bearer credential used by the
// authentication gate. Codec operations are pure: they depend only on the token
// string, the configured keys, and the injected clock, and never perform I/O.
package token
