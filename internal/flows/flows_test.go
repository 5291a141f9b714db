package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSignIn/request"
	"github.com/MrEthical07/goSignIn/token"
)

var (
	errNoClientID     = errors.New("no client id")
	errNoRefreshToken = errors.New("no refresh token")
	errNoAccessToken  = errors.New("no access token")
	errNoScope        = errors.New("no scope")
	errNoUser         = errors.New("no user")
	errNotSignedIn    = errors.New("not signed in")
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	responses map[string][]byte
	errs      map[string]error
	calls     []request.Operation
}

func opName(op request.Operation) string {
	switch op.(type) {
	case request.ExchangeCode:
		return "exchange"
	case request.RefreshToken:
		return "refresh"
	case request.GetProfile:
		return "profile"
	default:
		return "other"
	}
}

func (f *fakeFetcher) fetch(ctx context.Context, op request.Operation) ([]byte, error) {
	f.calls = append(f.calls, op)
	name := opName(op)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.responses[name], nil
}

func profileErrors() ProfileErrors {
	return ProfileErrors{NoAccessToken: errNoAccessToken, NoScope: errNoScope, NoUser: errNoUser}
}

func TestRunExchangeSuccessCommitsBeforeProfile(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]byte{
		"exchange": []byte(`{"access_token":"a1","expires_in":3600,"refresh_token":"r1","scope":"profile","token_type":"Bearer","id_token":"i"}`),
		"profile":  []byte(`{"id":"1","name":"Ada","picture":"https://p"}`),
	}}
	var committed *token.Auth
	res := RunExchange(context.Background(), "1234", ExchangeDeps{
		ClientID:       "a.b.c",
		RedirectScheme: "c.b.a",
		Now:            func() time.Time { return fixedNow },
		Fetch:          f.fetch,
		CommitAuth: func(ctx context.Context, auth *token.Auth) {
			if len(f.calls) != 1 {
				t.Fatalf("expected commit before profile fetch, calls=%d", len(f.calls))
			}
			committed = auth
		},
		Profile: ProfileDeps{Scopes: token.NewScopeSet(true, true), Errors: profileErrors()},
	})

	if res.Err != nil || res.Failure != ExchangeFailureNone {
		t.Fatalf("unexpected failure %v: %v", res.Failure, res.Err)
	}
	if committed == nil || committed != res.Auth {
		t.Fatal("expected decoded auth committed")
	}
	if !res.Auth.ExpiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("expected expiry relative to now, got %v", res.Auth.ExpiresAt)
	}
	if res.User == nil || res.User.Name() != "Ada" {
		t.Fatalf("unexpected user %+v", res.User)
	}
	ex, ok := f.calls[0].(request.ExchangeCode)
	if !ok || ex.Code != "1234" || ex.ClientID != "a.b.c" || ex.RedirectScheme != "c.b.a" {
		t.Fatalf("unexpected exchange op %#v", f.calls[0])
	}
	if p, ok := f.calls[1].(request.GetProfile); !ok || p.AccessToken != "a1" {
		t.Fatalf("expected profile fetched with new access token, got %#v", f.calls[1])
	}
}

func TestRunExchangeFailures(t *testing.T) {
	transportErr := errors.New("boom")
	tests := []struct {
		name        string
		clientID    string
		fetcher     *fakeFetcher
		scopes      token.ScopeSet
		wantFailure ExchangeFailureKind
		wantErr     error
		wantAuth    bool
		wantCalls   int
	}{
		{
			name:        "no client id",
			fetcher:     &fakeFetcher{},
			wantFailure: ExchangeFailureNoClientID,
			wantErr:     errNoClientID,
		},
		{
			name:        "transport",
			clientID:    "c",
			fetcher:     &fakeFetcher{errs: map[string]error{"exchange": transportErr}},
			wantFailure: ExchangeFailureTransport,
			wantErr:     transportErr,
			wantCalls:   1,
		},
		{
			name:        "decode",
			clientID:    "c",
			fetcher:     &fakeFetcher{responses: map[string][]byte{"exchange": []byte(`{"access_token":"a"}`)}},
			wantFailure: ExchangeFailureDecode,
			wantErr:     token.ErrDecode,
			wantCalls:   1,
		},
		{
			name:     "profile transport",
			clientID: "c",
			fetcher: &fakeFetcher{
				responses: map[string][]byte{"exchange": []byte(`{"access_token":"a","expires_in":10,"token_type":"Bearer"}`)},
				errs:      map[string]error{"profile": transportErr},
			},
			scopes:      token.NewScopeSet(true, false),
			wantFailure: ExchangeFailureProfile,
			wantErr:     transportErr,
			wantAuth:    true,
			wantCalls:   2,
		},
		{
			name:     "profile null",
			clientID: "c",
			fetcher: &fakeFetcher{responses: map[string][]byte{
				"exchange": []byte(`{"access_token":"a","expires_in":10,"token_type":"Bearer"}`),
				"profile":  []byte(`null`),
			}},
			scopes:      token.NewScopeSet(false, true),
			wantFailure: ExchangeFailureProfile,
			wantErr:     errNoUser,
			wantAuth:    true,
			wantCalls:   2,
		},
		{
			name:     "no profile scope",
			clientID: "c",
			fetcher: &fakeFetcher{responses: map[string][]byte{
				"exchange": []byte(`{"access_token":"a","expires_in":10,"token_type":"Bearer"}`),
			}},
			scopes:      token.NewScopeSet(false, false, "custom"),
			wantFailure: ExchangeFailureProfile,
			wantErr:     errNoScope,
			wantAuth:    true,
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RunExchange(context.Background(), "code", ExchangeDeps{
				ClientID:   tt.clientID,
				NoClientID: errNoClientID,
				Fetch:      tt.fetcher.fetch,
				Profile:    ProfileDeps{Scopes: tt.scopes, Errors: profileErrors()},
			})
			if res.Failure != tt.wantFailure {
				t.Fatalf("expected failure %v, got %v", tt.wantFailure, res.Failure)
			}
			if !errors.Is(res.Err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, res.Err)
			}
			if (res.Auth != nil) != tt.wantAuth {
				t.Fatalf("auth presence mismatch: %+v", res.Auth)
			}
			if res.User != nil {
				t.Fatal("expected no user on failure")
			}
			if len(tt.fetcher.calls) != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, len(tt.fetcher.calls))
			}
		})
	}
}

func TestRunRefreshPreconditions(t *testing.T) {
	f := &fakeFetcher{}
	errs := RefreshErrors{NoClientID: errNoClientID, NoRefreshToken: errNoRefreshToken}

	res := RunRefresh(context.Background(), RefreshDeps{Current: &token.Auth{RefreshToken: "r"}, Fetch: f.fetch, Errors: errs})
	if res.Failure != RefreshFailureNoClientID || !errors.Is(res.Err, errNoClientID) {
		t.Fatalf("expected no client id, got %v", res.Err)
	}
	res = RunRefresh(context.Background(), RefreshDeps{ClientID: "c", Fetch: f.fetch, Errors: errs})
	if res.Failure != RefreshFailureNoRefreshToken || !errors.Is(res.Err, errNoRefreshToken) {
		t.Fatalf("expected no refresh token for nil auth, got %v", res.Err)
	}
	res = RunRefresh(context.Background(), RefreshDeps{ClientID: "c", Current: &token.Auth{AccessToken: "a"}, Fetch: f.fetch, Errors: errs})
	if res.Failure != RefreshFailureNoRefreshToken {
		t.Fatalf("expected no refresh token for empty refresh token, got %v", res.Failure)
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no network calls, got %d", len(f.calls))
	}
}

func TestRunRefreshDecodesFresh(t *testing.T) {
	f := &fakeFetcher{responses: map[string][]byte{
		"refresh": []byte(`{"access_token":"a2","expires_in":60,"token_type":"bearer","scope":"s"}`),
	}}
	res := RunRefresh(context.Background(), RefreshDeps{
		ClientID: "c",
		Current:  &token.Auth{AccessToken: "a1", RefreshToken: "r1"},
		Now:      func() time.Time { return fixedNow },
		Fetch:    f.fetch,
	})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Fresh.AccessToken != "a2" || res.Fresh.RefreshToken != "" {
		t.Fatalf("unexpected fresh auth %+v", res.Fresh)
	}
	op, ok := f.calls[0].(request.RefreshToken)
	if !ok || op.RefreshToken != "r1" || op.ClientID != "c" {
		t.Fatalf("unexpected refresh op %#v", f.calls[0])
	}
}

func TestRunRefreshTransportAndDecodeErrors(t *testing.T) {
	boom := errors.New("boom")
	deps := RefreshDeps{ClientID: "c", Current: &token.Auth{RefreshToken: "r"}}

	deps.Fetch = (&fakeFetcher{errs: map[string]error{"refresh": boom}}).fetch
	if res := RunRefresh(context.Background(), deps); res.Failure != RefreshFailureTransport || !errors.Is(res.Err, boom) {
		t.Fatalf("expected transport failure, got %v", res.Err)
	}

	deps.Fetch = (&fakeFetcher{responses: map[string][]byte{"refresh": []byte(`garbage`)}}).fetch
	if res := RunRefresh(context.Background(), deps); res.Failure != RefreshFailureDecode || !errors.Is(res.Err, token.ErrDecode) {
		t.Fatalf("expected decode failure, got %v", res.Err)
	}
}

func TestRunProfilePreconditions(t *testing.T) {
	f := &fakeFetcher{}
	res := RunProfile(context.Background(), ProfileDeps{Scopes: token.NewScopeSet(true, true), Fetch: f.fetch, Errors: profileErrors()})
	if !errors.Is(res.Err, errNoAccessToken) {
		t.Fatalf("expected no access token, got %v", res.Err)
	}
	res = RunProfile(context.Background(), ProfileDeps{AccessToken: "a", Fetch: f.fetch, Errors: profileErrors()})
	if !errors.Is(res.Err, errNoScope) {
		t.Fatalf("expected no scope, got %v", res.Err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no network calls, got %d", len(f.calls))
	}
}

func TestRunAccessTokenCachedAndRefreshed(t *testing.T) {
	current := &token.Auth{AccessToken: "cached", ExpiresAt: fixedNow.Add(time.Minute)}
	refreshCalls := 0
	refresh := func(ctx context.Context) (*token.Auth, error) {
		refreshCalls++
		return &token.Auth{AccessToken: "fresh"}, nil
	}
	now := func() time.Time { return fixedNow }

	res := RunAccessToken(context.Background(), AccessTokenDeps{Current: current, Now: now, Refresh: refresh})
	if res.AccessToken != "cached" || !res.Cached || refreshCalls != 0 {
		t.Fatalf("expected cached token without refresh, got %+v calls=%d", res, refreshCalls)
	}

	res = RunAccessToken(context.Background(), AccessTokenDeps{Current: current, Now: now, Leeway: 2 * time.Minute, Refresh: refresh})
	if res.AccessToken != "fresh" || res.Cached || refreshCalls != 1 {
		t.Fatalf("expected refresh inside leeway, got %+v calls=%d", res, refreshCalls)
	}

	res = RunAccessToken(context.Background(), AccessTokenDeps{NotSignedIn: errNotSignedIn, Refresh: refresh})
	if !errors.Is(res.Err, errNotSignedIn) {
		t.Fatalf("expected not signed in, got %v", res.Err)
	}
}

func TestRunAccessTokenPropagatesRefreshError(t *testing.T) {
	expired := &token.Auth{AccessToken: "old", ExpiresAt: fixedNow.Add(-time.Second)}
	res := RunAccessToken(context.Background(), AccessTokenDeps{
		Current: expired,
		Now:     func() time.Time { return fixedNow },
		Refresh: func(ctx context.Context) (*token.Auth, error) { return nil, errNoRefreshToken },
	})
	if !errors.Is(res.Err, errNoRefreshToken) || res.AccessToken != "" {
		t.Fatalf("expected refresh error, got %+v", res)
	}
}
