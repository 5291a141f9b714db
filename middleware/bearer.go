package middleware

import (
	"context"
	"io"
	"net/http"

	goSignIn "github.com/MrEthical07/goSignIn"
)

// TokenSource is the subset of [goSignIn.Engine] used to authorize requests.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (*goSignIn.Auth, error)
}

type bearerTransport struct {
	source TokenSource
	next   http.RoundTripper
}

// Bearer returns a RoundTripper that sets "Authorization: Bearer <token>" on
// every request before handing it to next. A nil next uses
// [http.DefaultTransport]. Token errors are returned without sending the
// request.
func Bearer(source TokenSource, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &bearerTransport{source: source, next: next}
}

// Client returns a copy of base whose transport is wrapped with [Bearer]. A
// nil base starts from a zero client.
func Client(source TokenSource, base *http.Client) *http.Client {
	c := &http.Client{}
	if base != nil {
		*c = *base
	}
	c.Transport = Bearer(source, c.Transport)
	return c
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	accessToken, err := t.source.AccessToken(ctx)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	resp, err := t.next.RoundTrip(authorized(req, accessToken))
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !replayable(req) {
		return resp, err
	}

	auth, err := t.source.Refresh(ctx)
	if err != nil || auth.AccessToken == accessToken {
		return resp, nil
	}

	retry := authorized(req, auth.AccessToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return t.next.RoundTrip(retry)
}

// authorized clones req with the bearer header set. RoundTrippers must not
// modify the caller's request.
func authorized(req *http.Request, accessToken string) *http.Request {
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", "Bearer "+accessToken)
	return out
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
