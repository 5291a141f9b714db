// Package transport executes [request.Request] descriptors over HTTP.
//
// Every failure is classified into exactly one of [ErrNetwork], [ErrNoData] or
// *[HTTPError]; any status outside 200-299 is an HTTPError, never a success.
//
// # What this package must NOT do
//
//   - Retry requests or follow application-level redirects.
//   - Decode response payloads.
package transport
