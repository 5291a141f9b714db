// Package internal holds helpers that are private to goSignIn.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: pure-function orchestrators for the exchange, refresh, access
//     token and profile operations
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSignIn API other than through
//     root aliases.
//   - Be imported by any package outside the goSignIn module.
package internal
