package goSignIn

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/goSignIn/internal/audit"
	"github.com/MrEthical07/goSignIn/jwt"
	"github.com/MrEthical07/goSignIn/opener"
	"github.com/MrEthical07/goSignIn/token"
	"github.com/MrEthical07/goSignIn/transport"
)

// Auth is the token set of the signed-in user. See [token.Auth].
type Auth = token.Auth

// User is the Google profile of the signed-in user. See [token.User].
type User = token.User

// ScopeSet is the set of requested scopes. See [token.ScopeSet].
type ScopeSet = token.ScopeSet

// IDClaims are the validated claims of an ID token.
type IDClaims = jwt.IDClaims

// Transport executes request descriptors. See [transport.Transport].
type Transport = transport.Transport

// RedirectOpener hands the authorization URL to the platform. See
// [opener.RedirectOpener].
type RedirectOpener = opener.RedirectOpener

// OpenerFunc adapts a function into a [RedirectOpener].
type OpenerFunc = opener.Func

// TokenStore persists the durable copy of the current Auth and User.
//
// Load methods return (nil, nil) when the record is absent. Saving nil
// removes the record. Clear removes both records; it reports failure through
// its error. Implementations must be safe for concurrent use.
type TokenStore interface {
	LoadAuth(ctx context.Context) (*Auth, error)
	LoadUser(ctx context.Context) (*User, error)
	SaveAuth(ctx context.Context, a *Auth) error
	SaveUser(ctx context.Context, u *User) error
	Clear(ctx context.Context) error
}

// SignInResult is the outcome of one sign-in attempt or redirect-driven
// exchange. Fields are nil when not applicable: a failed profile fetch
// leaves Auth set and User nil.
type SignInResult struct {
	AttemptID string
	Auth      *Auth
	User      *User
	Err       error
}

// Listener is notified exactly once per sign-in attempt and once per
// redirect-driven exchange. Calls arrive on an unspecified goroutine.
type Listener interface {
	OnSignIn(ctx context.Context, result SignInResult)
}

// ListenerFunc adapts a function into a [Listener].
type ListenerFunc func(ctx context.Context, result SignInResult)

// OnSignIn calls f.
func (f ListenerFunc) OnSignIn(ctx context.Context, result SignInResult) {
	f(ctx, result)
}

// RefreshFunc receives the merged token set or the refresh error.
type RefreshFunc func(auth *Auth, err error)

// TokenFunc receives a usable access token or the error that prevented it.
type TokenFunc func(accessToken string, err error)

// ProfileFunc receives the fetched profile or the fetch error.
type ProfileFunc func(user *User, err error)

// AuditEvent is an alias for the internal audit event model.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's async dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink discards all audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink forwards audit events to a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink returns a [ChannelSink] with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
