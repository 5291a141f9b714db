// Package audit relays sign-in lifecycle events to a caller-supplied sink.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full semantics.
//   - [Event]: one lifecycle record with attempt ID, correlation ID and metadata.
//
// # Architecture boundaries
//
// This package owns buffering and sink delivery. Deciding which events to
// emit belongs to the Engine.
//
// # What this package must NOT do
//
//   - Record token values or authorization codes.
//   - Import goSignIn or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
