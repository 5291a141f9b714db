package flows

import (
	"context"

	"github.com/MrEthical07/goSignIn/request"
	"github.com/MrEthical07/goSignIn/token"
)

// ProfileFailureKind classifies profile flow failures for root-level mapping.
type ProfileFailureKind int

const (
	ProfileFailureNone ProfileFailureKind = iota
	ProfileFailureNoAccessToken
	ProfileFailureNoScope
	ProfileFailureTransport
	ProfileFailureDecode
	ProfileFailureNoUser
)

// ProfileResult carries either the decoded profile or failure metadata.
type ProfileResult struct {
	Failure ProfileFailureKind
	Err     error
	User    *token.User
}

// ProfileErrors maps failure kinds onto root sentinels.
type ProfileErrors struct {
	NoAccessToken error
	NoScope       error
	NoUser        error
}

// ProfileDeps captures profile flow dependencies.
type ProfileDeps struct {
	AccessToken string
	Scopes      token.ScopeSet
	Fetch       Fetcher
	Errors      ProfileErrors
}

// RunProfile fetches and decodes the userinfo profile.
func RunProfile(ctx context.Context, deps ProfileDeps) ProfileResult {
	if deps.AccessToken == "" {
		return ProfileResult{Failure: ProfileFailureNoAccessToken, Err: deps.Errors.NoAccessToken}
	}
	if !deps.Scopes.HasProfileAccess() {
		return ProfileResult{Failure: ProfileFailureNoScope, Err: deps.Errors.NoScope}
	}

	data, err := deps.Fetch(ctx, request.GetProfile{AccessToken: deps.AccessToken})
	if err != nil {
		return ProfileResult{Failure: ProfileFailureTransport, Err: err}
	}

	user, err := token.DecodeUser(data)
	if err != nil {
		return ProfileResult{Failure: ProfileFailureDecode, Err: err}
	}
	if user == nil {
		return ProfileResult{Failure: ProfileFailureNoUser, Err: deps.Errors.NoUser}
	}

	return ProfileResult{User: user}
}
