package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSignIn/token"
)

// AccessTokenResult carries a usable access token or the error that
// prevented obtaining one.
type AccessTokenResult struct {
	AccessToken string
	Cached      bool
	Err         error
}

// AccessTokenDeps captures access-token flow dependencies.
type AccessTokenDeps struct {
	Current     *token.Auth
	Now         func() time.Time
	Leeway      time.Duration
	NotSignedIn error
	// Refresh runs a full refresh and returns the committed token set.
	Refresh func(ctx context.Context) (*token.Auth, error)
}

// RunAccessToken returns the cached access token while it is unexpired and
// refreshes otherwise.
func RunAccessToken(ctx context.Context, deps AccessTokenDeps) AccessTokenResult {
	if deps.Current == nil {
		return AccessTokenResult{Err: deps.NotSignedIn}
	}
	if !deps.Current.Expired(nowOrDefault(deps.Now), deps.Leeway) {
		return AccessTokenResult{AccessToken: deps.Current.AccessToken, Cached: true}
	}

	auth, err := deps.Refresh(ctx)
	if err != nil {
		return AccessTokenResult{Err: err}
	}
	return AccessTokenResult{AccessToken: auth.AccessToken}
}
