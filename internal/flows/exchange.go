package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSignIn/request"
	"github.com/MrEthical07/goSignIn/token"
)

// ExchangeFailureKind classifies exchange flow failures for root-level mapping.
type ExchangeFailureKind int

const (
	ExchangeFailureNone ExchangeFailureKind = iota
	ExchangeFailureNoClientID
	ExchangeFailureTransport
	ExchangeFailureDecode
	ExchangeFailureProfile
)

// ExchangeResult is the final Auth/User/error triple of one code exchange.
// Auth is set whenever the token response decoded, even if the profile
// fetch failed afterwards.
type ExchangeResult struct {
	Failure        ExchangeFailureKind
	ProfileFailure ProfileFailureKind
	Err            error
	Auth           *token.Auth
	User           *token.User
}

// ExchangeDeps captures exchange flow dependencies.
type ExchangeDeps struct {
	ClientID       string
	RedirectScheme string
	NoClientID     error
	Now            func() time.Time
	Fetch          Fetcher
	// CommitAuth installs the decoded token set before the profile fetch.
	CommitAuth func(ctx context.Context, auth *token.Auth)
	Profile    ProfileDeps
}

// RunExchange trades an authorization code for tokens and then fetches the
// profile with the new access token.
func RunExchange(ctx context.Context, code string, deps ExchangeDeps) ExchangeResult {
	if deps.ClientID == "" {
		return ExchangeResult{Failure: ExchangeFailureNoClientID, Err: deps.NoClientID}
	}

	data, err := deps.Fetch(ctx, request.ExchangeCode{
		Code:           code,
		ClientID:       deps.ClientID,
		RedirectScheme: deps.RedirectScheme,
	})
	if err != nil {
		return ExchangeResult{Failure: ExchangeFailureTransport, Err: err}
	}

	auth, err := token.DecodeAuth(data, nowOrDefault(deps.Now))
	if err != nil {
		return ExchangeResult{Failure: ExchangeFailureDecode, Err: err}
	}
	if deps.CommitAuth != nil {
		deps.CommitAuth(ctx, auth)
	}

	profileDeps := deps.Profile
	profileDeps.AccessToken = auth.AccessToken
	if profileDeps.Fetch == nil {
		profileDeps.Fetch = deps.Fetch
	}
	profile := RunProfile(ctx, profileDeps)
	if profile.Failure != ProfileFailureNone {
		return ExchangeResult{
			Failure:        ExchangeFailureProfile,
			ProfileFailure: profile.Failure,
			Err:            profile.Err,
			Auth:           auth,
		}
	}

	return ExchangeResult{Auth: auth, User: profile.User}
}
