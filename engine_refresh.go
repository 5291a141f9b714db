package goSignIn

import (
	"context"

	"github.com/MrEthical07/goSignIn/internal/flows"
	"github.com/MrEthical07/goSignIn/token"
)

var refreshErrors = flows.RefreshErrors{
	NoClientID:     ErrNoClientID,
	NoRefreshToken: ErrNoRefreshToken,
}

func (e *Engine) refreshDeps() flows.RefreshDeps {
	return flows.RefreshDeps{
		ClientID: e.clientID,
		Current:  e.currentAuth(),
		Now:      e.now,
		Fetch:    e.fetch,
		Errors:   refreshErrors,
	}
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh redeems the current refresh token and merges the response into the
// current token set: the record with the later expiry wins, and a refresh
// token omitted by the server is kept from the older record. The merged set
// is stored and returned. If the user signed out while the request was in
// flight the response is discarded and [ErrNotSignedIn] is returned.
func (e *Engine) Refresh(ctx context.Context) (*Auth, error) {
	res := flows.RunRefresh(ctx, e.refreshDeps())
	if res.Failure != flows.RefreshFailureNone {
		e.refreshFailed(ctx, res.Err)
		return nil, res.Err
	}

	merged, err := e.commitRefresh(ctx, res.Fresh)
	if err != nil {
		e.refreshFailed(ctx, err)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, "", nil, nil)
	return merged, nil
}

func (e *Engine) commitRefresh(ctx context.Context, fresh *Auth) (*Auth, error) {
	e.mu.Lock()
	if e.auth == nil {
		e.mu.Unlock()
		return nil, ErrNotSignedIn
	}
	merged := token.Merge(*e.auth, *fresh)
	e.auth = &merged
	e.authSeq++
	seq := e.authSeq
	st := e.store
	e.mu.Unlock()

	e.persistAuth(ctx, st, seq, &merged)
	return cloneAuth(&merged), nil
}

func (e *Engine) refreshFailed(ctx context.Context, err error) {
	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, auditEventRefreshFailure, false, "", err, nil)
}

// RefreshToken is the callback form of [Engine.Refresh]. Precondition
// failures (no client id, no refresh token) invoke fn before RefreshToken
// returns; otherwise fn runs on a background goroutine. fn may be nil.
func (e *Engine) RefreshToken(ctx context.Context, fn RefreshFunc) {
	if fn == nil {
		fn = func(*Auth, error) {}
	}

	if res := flows.CheckRefresh(e.refreshDeps()); res.Failure != flows.RefreshFailureNone {
		e.refreshFailed(ctx, res.Err)
		fn(nil, res.Err)
		return
	}

	if !e.goAsync(func() { fn(e.Refresh(ctx)) }) {
		fn(nil, ErrEngineClosed)
	}
}

// AccessToken returns an access token that is valid for at least the
// configured expiry leeway, refreshing first when the cached one is not.
func (e *Engine) AccessToken(ctx context.Context) (string, error) {
	res := flows.RunAccessToken(ctx, e.accessTokenDeps(e.currentAuth()))
	if res.Cached {
		e.metricInc(MetricAccessTokenCached)
	}
	return res.AccessToken, res.Err
}

func (e *Engine) accessTokenDeps(current *Auth) flows.AccessTokenDeps {
	return flows.AccessTokenDeps{
		Current:     current,
		Now:         e.now,
		Leeway:      e.config.Token.ExpiryLeeway,
		NotSignedIn: ErrNotSignedIn,
		Refresh:     e.Refresh,
	}
}

// RefreshingAccessToken is the callback form of [Engine.AccessToken]. When
// signed out, or when the cached token is still valid, fn is invoked before
// RefreshingAccessToken returns and no request is sent. fn may be nil.
func (e *Engine) RefreshingAccessToken(ctx context.Context, fn TokenFunc) {
	if fn == nil {
		fn = func(string, error) {}
	}

	current := e.currentAuth()
	if current == nil {
		fn("", ErrNotSignedIn)
		return
	}
	if !current.Expired(e.now(), e.config.Token.ExpiryLeeway) {
		e.metricInc(MetricAccessTokenCached)
		fn(current.AccessToken, nil)
		return
	}

	if !e.goAsync(func() { fn(e.AccessToken(ctx)) }) {
		fn("", ErrEngineClosed)
	}
}
