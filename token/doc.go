// Package token holds the value types of a Google sign-in: the [Auth] token set,
// the [User] profile and the requested [ScopeSet].
//
// Token-endpoint responses carry a lifetime in seconds; [DecodeAuth] turns it into
// an absolute expiry at decode time. Refresh responses are folded into the previous
// token set with [Merge], which keeps the old refresh token when the server omits one.
//
// # What this package must NOT do
//
//   - Perform I/O.
//   - Import goSignIn or any sibling package.
package token
