// Package goSignIn implements the OAuth 2.0 authorization-code flow against
// Google for installed applications: open the consent page, receive the
// redirect, exchange the code, keep the token set fresh and fetch the
// signed-in user's profile.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goSignIn is the public surface. It exposes [Engine], [Builder], [Config]
// and the value types [Auth] and [User]. Request construction lives in
// request, the wire round trip in transport, durable persistence in store,
// ID token checks in jwt and the browser hand-off in opener. Flow
// orchestration and audit dispatch live under internal/ and are never
// exported. The middleware package authorizes outgoing API calls with the
// Engine's access token.
//
// # State
//
// The Engine holds at most one [Auth] and one [User]. Every change to Auth
// is written through to the [TokenStore]; store failures are logged and
// counted but never fail the operation that caused them. A refresh merges
// the server response into the current Auth (later expiry wins, a missing
// refresh token is kept) rather than replacing it.
//
// # What this package must NOT do
//
//   - Log or audit token values or authorization codes.
//   - Perform I/O during construction beyond opening and reading the token
//     store.
//   - Import any sub-package that re-imports goSignIn (no import cycles).
package goSignIn
