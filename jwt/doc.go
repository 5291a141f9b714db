// Package jwt validates the OpenID Connect ID tokens returned alongside
// access tokens.
//
// Signature verification is optional and keyed by kid. Issuer, audience and
// time claims are always checked.
//
// # What this package must NOT do
//
//   - Fetch signing keys over the network.
//   - Issue or sign tokens.
package jwt
