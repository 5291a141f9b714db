// Package request maps sign-in operations onto HTTP request descriptors.
//
// [Operation] is a closed set of four variants ([Authorize], [ExchangeCode],
// [RefreshToken], [GetProfile]), each carrying only the parameters it needs.
// [Builder.Build] consumes them exhaustively and returns a [Request]: GET
// operations encode parameters as URL query items, POST operations as a
// percent-encoded form body produced by [EncodeForm].
//
// # What this package must NOT do
//
//   - Perform network I/O.
//   - Read engine state; every input arrives on the operation value.
package request
