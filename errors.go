package goSignIn

import (
	"errors"

	"github.com/MrEthical07/goSignIn/request"
	"github.com/MrEthical07/goSignIn/token"
	"github.com/MrEthical07/goSignIn/transport"
)

var (
	// ErrNoClientID is returned when an operation needs a client id and none is configured.
	ErrNoClientID = errors.New("no client id")
	// ErrNoScope is returned when sign-in has no scopes or a profile fetch has
	// neither the profile nor the email scope.
	ErrNoScope = errors.New("no scope")
	// ErrNoRefreshToken is returned when a refresh is requested without a refresh token.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrNoAccessToken is returned when a profile fetch has no access token to send.
	ErrNoAccessToken = errors.New("no access token")
	// ErrNotSignedIn is returned when an access token is requested before sign-in.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrNoUser is returned when the profile endpoint returns no profile.
	ErrNoUser = errors.New("no user")
	// ErrNoIDToken is returned when the current token set carries no ID token.
	ErrNoIDToken = errors.New("no id token")
	// ErrRedirectOpen wraps failures of the configured [RedirectOpener].
	ErrRedirectOpen = errors.New("redirect open failed")
	// ErrEngineClosed is returned by operations started after [Engine.Close].
	ErrEngineClosed = errors.New("engine closed")

	// ErrJSONDecode wraps token and profile decode failures.
	ErrJSONDecode = token.ErrDecode
	// ErrRequestConstruction is returned when a request cannot be built.
	ErrRequestConstruction = request.ErrConstruction
	// ErrNetwork is returned when the transport could not complete a round trip.
	ErrNetwork = transport.ErrNetwork
	// ErrNoData is returned when a successful response has no body.
	ErrNoData = transport.ErrNoData
)

// HTTPError reports a non-2xx response; match it with errors.As.
type HTTPError = transport.HTTPError
