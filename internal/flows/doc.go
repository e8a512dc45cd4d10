// Package flows contains the authentication orchestration extracted from the
// root package. Flow functions are pure over their dependency sets: the root
// gate injects the codec, the oracle, and error classification, then maps the
// returned failure kinds onto its public sentinels. Keeping orchestration here
// avoids import cycles between the root package and its sub-packages.
package flows
