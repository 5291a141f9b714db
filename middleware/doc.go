// Package middleware exposes HTTP client adapters that authorize outgoing
// requests with the access token held by a goSignIn.Engine.
//
// # Adapters
//
//   - [Bearer] wraps an [http.RoundTripper] and sets the Authorization header.
//   - [Client] returns an [http.Client] using [Bearer].
//
// A 401 response triggers one forced refresh and one retry when the request
// body can be replayed.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Token reuse,
// expiry and refresh decisions stay in the Engine.
//
// # What this package must NOT do
//
//   - Cache access tokens (the Engine already does).
//   - Retry more than once per request.
//   - Log or echo token values.
package middleware
