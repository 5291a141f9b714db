package goSignIn

import (
	"context"

	"github.com/MrEthical07/goSignIn/internal/flows"
)

var profileErrors = flows.ProfileErrors{
	NoAccessToken: ErrNoAccessToken,
	NoScope:       ErrNoScope,
	NoUser:        ErrNoUser,
}

func (e *Engine) profileDeps() flows.ProfileDeps {
	e.mu.RLock()
	defer e.mu.RUnlock()

	deps := flows.ProfileDeps{
		Scopes: e.scopes.Clone(),
		Fetch:  e.fetch,
		Errors: profileErrors,
	}
	if e.auth != nil {
		deps.AccessToken = e.auth.AccessToken
	}
	return deps
}

// Profile describes the profile operation and its observable behavior.
//
// Profile fetches the userinfo profile with the current access token. It
// requires the profile or email scope. A fetched profile replaces the
// current [User] and is stored.
func (e *Engine) Profile(ctx context.Context) (*User, error) {
	res := flows.RunProfile(ctx, e.profileDeps())
	if res.Failure != flows.ProfileFailureNone {
		e.metricInc(MetricProfileFailure)
		e.emitAudit(ctx, auditEventProfileFailure, false, "", res.Err, nil)
		return nil, res.Err
	}

	e.replaceUser(ctx, res.User)
	e.metricInc(MetricProfileSuccess)
	e.emitAudit(ctx, auditEventProfileSuccess, true, "", nil, nil)
	return cloneUser(res.User), nil
}

// GetProfile is the callback form of [Engine.Profile]. A missing access token
// or scope invokes fn before GetProfile returns. fn may be nil.
func (e *Engine) GetProfile(ctx context.Context, fn ProfileFunc) {
	if fn == nil {
		fn = func(*User, error) {}
	}

	deps := e.profileDeps()
	switch {
	case deps.AccessToken == "":
		fn(nil, ErrNoAccessToken)
		return
	case !deps.Scopes.HasProfileAccess():
		fn(nil, ErrNoScope)
		return
	}

	if !e.goAsync(func() { fn(e.Profile(ctx)) }) {
		fn(nil, ErrEngineClosed)
	}
}

// IDClaims validates the ID token of the current token set and returns its
// claims.
func (e *Engine) IDClaims() (*IDClaims, error) {
	current := e.currentAuth()
	if current == nil {
		return nil, ErrNotSignedIn
	}
	if current.IDToken == "" {
		return nil, ErrNoIDToken
	}
	return e.idParser.Parse(current.IDToken)
}
