// Package flows contains pure-function orchestrators for the network-bound
// Engine operations.
//
// Each flow function (RunExchange, RunRefresh, RunProfile, RunAccessToken)
// accepts a typed dependency struct and returns a result value carrying a
// failure kind. This keeps the Engine type thin and lets every branch be
// tested with a fake fetcher.
//
// # Architecture boundaries
//
// Flow functions coordinate request building, transport and decoding. They
// do NOT own engine state, listeners, persistence, metrics or audit; the
// Engine applies results to those.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSignIn (to avoid import cycles).
//   - Perform I/O directly; all I/O goes through the Fetcher dependency.
package flows
