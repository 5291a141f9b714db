package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSignIn/request"
	"github.com/MrEthical07/goSignIn/token"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureNoClientID
	RefreshFailureNoRefreshToken
	RefreshFailureTransport
	RefreshFailureDecode
)

// RefreshResult carries the freshly decoded token set or failure metadata.
// Merging with the current token set is left to the caller.
type RefreshResult struct {
	Failure RefreshFailureKind
	Err     error
	Fresh   *token.Auth
}

// RefreshErrors maps precondition failures onto root sentinels.
type RefreshErrors struct {
	NoClientID     error
	NoRefreshToken error
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	ClientID string
	Current  *token.Auth
	Now      func() time.Time
	Fetch    Fetcher
	Errors   RefreshErrors
}

// CheckRefresh reports the precondition failure RunRefresh would hit before
// any network I/O, or RefreshFailureNone.
func CheckRefresh(deps RefreshDeps) RefreshResult {
	if deps.ClientID == "" {
		return RefreshResult{Failure: RefreshFailureNoClientID, Err: deps.Errors.NoClientID}
	}
	if !deps.Current.HasRefreshToken() {
		return RefreshResult{Failure: RefreshFailureNoRefreshToken, Err: deps.Errors.NoRefreshToken}
	}
	return RefreshResult{}
}

// RunRefresh redeems the current refresh token for a new token set.
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	if res := CheckRefresh(deps); res.Failure != RefreshFailureNone {
		return res
	}

	data, err := deps.Fetch(ctx, request.RefreshToken{
		ClientID:     deps.ClientID,
		RefreshToken: deps.Current.RefreshToken,
	})
	if err != nil {
		return RefreshResult{Failure: RefreshFailureTransport, Err: err}
	}

	fresh, err := token.DecodeAuth(data, nowOrDefault(deps.Now))
	if err != nil {
		return RefreshResult{Failure: RefreshFailureDecode, Err: err}
	}
	return RefreshResult{Fresh: fresh}
}
