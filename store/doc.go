// Package store provides durable copies of the signed-in Auth and User
// records.
//
// Three backends are available: [Memory] for tests and short-lived processes,
// [Redis] for shared deployments, and [SQLite] for a local file. Every backend
// reports an absent record as (nil, nil) and treats a nil save as a delete.
//
// # Record encoding
//
// Redis and SQLite persist records as a format version byte followed by JSON.
// Decoders reject unknown versions with [ErrCorruptRecord].
//
// # What this package must NOT do
//
//   - Import goSignIn (no upward imports).
//   - Merge or refresh tokens; records are stored exactly as given.
package store
