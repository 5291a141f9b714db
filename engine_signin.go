package goSignIn

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MrEthical07/goSignIn/internal/flows"
	"github.com/MrEthical07/goSignIn/request"
	"github.com/google/uuid"
)

// SignInURL returns the authorization URL the next [Engine.SignIn] opens.
func (e *Engine) SignInURL() (*url.URL, error) {
	if e.clientID == "" {
		return nil, ErrNoClientID
	}
	scopes := e.Scopes()
	if len(scopes) == 0 {
		return nil, ErrNoScope
	}

	req, err := e.builder.Build(request.Authorize{
		ClientID:       e.clientID,
		Scopes:         scopes,
		RedirectScheme: e.scheme,
	})
	if err != nil {
		return nil, err
	}
	return req.URL, nil
}

// SignIn describes the signin operation and its observable behavior.
//
// SignIn opens the authorization URL through the configured [RedirectOpener]
// and returns. The sign-in completes when the platform hands the redirect to
// [Engine.HandleRedirect]. A precondition or opener failure is returned and
// also delivered to every listener before SignIn returns.
func (e *Engine) SignIn(ctx context.Context) error {
	attemptID := uuid.NewString()

	var err error
	if e.isClosed() {
		err = ErrEngineClosed
	}

	var target *url.URL
	if err == nil {
		target, err = e.SignInURL()
	}
	if err == nil {
		if openErr := e.opener.Open(ctx, target); openErr != nil {
			err = fmt.Errorf("%w: %w", ErrRedirectOpen, openErr)
		}
	}

	if err != nil {
		e.metricInc(MetricSignInRejected)
		e.emitAudit(ctx, auditEventSignInRejected, false, attemptID, err, nil)
		e.notify(ctx, SignInResult{AttemptID: attemptID, Err: err})
		return err
	}

	e.mu.Lock()
	e.pendingAttempt = attemptID
	e.mu.Unlock()

	e.metricInc(MetricSignInStarted)
	e.emitAudit(ctx, auditEventSignInStarted, true, attemptID, nil, func() map[string]string {
		return map[string]string{"scopes": target.Query().Get("scope")}
	})
	return nil
}

// HandleRedirect describes the handleredirect operation and its observable behavior.
//
// HandleRedirect reports whether u is an authorization redirect for this
// client: its scheme matches [Engine.RedirectScheme] case-insensitively and
// it carries a non-empty code query parameter. When it is, the code exchange
// and profile fetch run in the background, detached from ctx cancellation,
// and listeners receive the outcome. The return value does not depend on the
// exchange outcome.
func (e *Engine) HandleRedirect(ctx context.Context, u *url.URL) bool {
	if reason := e.redirectMismatch(u); reason != "" {
		e.metricInc(MetricRedirectIgnored)
		e.emitAudit(ctx, auditEventRedirectIgnored, false, "", nil, func() map[string]string {
			return map[string]string{"reason": reason}
		})
		return false
	}

	code := u.Query().Get("code")
	e.metricInc(MetricRedirectHandled)

	e.mu.Lock()
	attemptID := e.pendingAttempt
	e.pendingAttempt = ""
	e.mu.Unlock()
	if attemptID == "" {
		attemptID = uuid.NewString()
	}

	detached := context.WithoutCancel(ctx)
	if !e.goAsync(func() { e.exchange(detached, attemptID, code) }) {
		e.notify(detached, SignInResult{AttemptID: attemptID, Err: ErrEngineClosed})
	}
	return true
}

func (e *Engine) redirectMismatch(u *url.URL) string {
	switch {
	case u == nil:
		return "nil_url"
	case e.scheme == "" || !strings.EqualFold(u.Scheme, e.scheme):
		return "scheme"
	case u.Query().Get("code") == "":
		return "missing_code"
	default:
		return ""
	}
}

func (e *Engine) exchange(ctx context.Context, attemptID, code string) {
	e.mu.RLock()
	scopes := e.scopes.Clone()
	e.mu.RUnlock()

	res := flows.RunExchange(ctx, code, flows.ExchangeDeps{
		ClientID:       e.clientID,
		RedirectScheme: e.scheme,
		NoClientID:     ErrNoClientID,
		Now:            e.now,
		Fetch:          e.fetch,
		CommitAuth:     e.replaceAuth,
		Profile: flows.ProfileDeps{
			Scopes: scopes,
			Errors: profileErrors,
		},
	})
	if res.User != nil {
		e.replaceUser(ctx, res.User)
	}

	switch res.Failure {
	case flows.ExchangeFailureNone:
		e.metricInc(MetricExchangeSuccess)
		e.metricInc(MetricProfileSuccess)
		e.emitAudit(ctx, auditEventExchangeSuccess, true, attemptID, nil, nil)
	case flows.ExchangeFailureProfile:
		e.metricInc(MetricExchangeSuccess)
		e.metricInc(MetricProfileFailure)
		e.emitAudit(ctx, auditEventProfileFailure, false, attemptID, res.Err, nil)
	default:
		e.metricInc(MetricExchangeFailure)
		e.emitAudit(ctx, auditEventExchangeFailure, false, attemptID, res.Err, nil)
	}

	e.notify(ctx, SignInResult{
		AttemptID: attemptID,
		Auth:      cloneAuth(res.Auth),
		User:      cloneUser(res.User),
		Err:       res.Err,
	})
}

// SignOut describes the signout operation and its observable behavior.
//
// SignOut drops the in-memory token set and clears the durable store. The
// last fetched [User] stays readable through [Engine.User]. SignOut reports
// whether the durable clear succeeded.
func (e *Engine) SignOut(ctx context.Context) bool {
	e.mu.Lock()
	e.auth = nil
	e.pendingAttempt = ""
	e.authSeq++
	seq := e.authSeq
	st := e.store
	e.mu.Unlock()

	err := e.persistOrdered(seq, st, func() error { return st.Clear(ctx) })
	if err != nil {
		e.storeFailure(ctx, "clear", err)
	}

	e.metricInc(MetricSignOut)
	e.emitAudit(ctx, auditEventSignOut, err == nil, "", err, nil)
	return err == nil
}
