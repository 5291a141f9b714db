package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ErrConstruction is returned when a request descriptor cannot be built.
var ErrConstruction = errors.New("request construction failed")

const (
	// DefaultAuthBaseURL hosts the Google authorization endpoint.
	DefaultAuthBaseURL = "https://accounts.google.com/o/oauth2/v2"
	// DefaultTokenBaseURL hosts the Google token endpoint.
	DefaultTokenBaseURL = "https://oauth2.googleapis.com"
	// DefaultProfileBaseURL hosts the Google userinfo endpoint.
	DefaultProfileBaseURL = "https://www.googleapis.com/oauth2/v2"

	contentTypeForm = "application/x-www-form-urlencoded"
)

// Operation is one of [Authorize], [ExchangeCode], [RefreshToken] or [GetProfile].
type Operation interface {
	operation()
}

// Authorize builds the browser sign-in URL.
type Authorize struct {
	ClientID       string
	Scopes         []string
	RedirectScheme string
}

// ExchangeCode trades an authorization code for tokens.
type ExchangeCode struct {
	Code           string
	ClientID       string
	RedirectScheme string
}

// RefreshToken obtains a new access token.
type RefreshToken struct {
	ClientID     string
	RefreshToken string
}

// GetProfile fetches the userinfo profile.
type GetProfile struct {
	AccessToken string
}

func (Authorize) operation()    {}
func (ExchangeCode) operation() {}
func (RefreshToken) operation() {}
func (GetProfile) operation()   {}

// Endpoints holds the base URLs of the three Google services.
type Endpoints struct {
	AuthBaseURL    string
	TokenBaseURL   string
	ProfileBaseURL string
}

// DefaultEndpoints returns the production Google endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		AuthBaseURL:    DefaultAuthBaseURL,
		TokenBaseURL:   DefaultTokenBaseURL,
		ProfileBaseURL: DefaultProfileBaseURL,
	}
}

// Param is a single request parameter.
type Param struct {
	Key   string
	Value string
}

// Request is a fully formed HTTP request descriptor.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// Builder maps operations onto request descriptors. It holds no mutable state.
type Builder struct {
	endpoints Endpoints
}

// NewBuilder returns a builder for the given endpoints.
func NewBuilder(endpoints Endpoints) *Builder {
	return &Builder{endpoints: endpoints}
}

// Build turns op into a request descriptor.
func (b *Builder) Build(op Operation) (*Request, error) {
	switch op := op.(type) {
	case Authorize:
		return b.build(http.MethodGet, b.endpoints.AuthBaseURL, "auth", []Param{
			{Key: "client_id", Value: op.ClientID},
			{Key: "scope", Value: strings.Join(op.Scopes, " ")},
			{Key: "response_type", Value: "code"},
			{Key: "redirect_uri", Value: redirectURI(op.RedirectScheme)},
		})
	case ExchangeCode:
		return b.build(http.MethodPost, b.endpoints.TokenBaseURL, "token", []Param{
			{Key: "code", Value: op.Code},
			{Key: "client_id", Value: op.ClientID},
			{Key: "grant_type", Value: "authorization_code"},
			{Key: "redirect_uri", Value: redirectURI(op.RedirectScheme)},
		})
	case RefreshToken:
		return b.build(http.MethodPost, b.endpoints.TokenBaseURL, "token", []Param{
			{Key: "client_id", Value: op.ClientID},
			{Key: "refresh_token", Value: op.RefreshToken},
			{Key: "grant_type", Value: "refresh_token"},
		})
	case GetProfile:
		return b.build(http.MethodGet, b.endpoints.ProfileBaseURL, "userinfo", []Param{
			{Key: "access_token", Value: op.AccessToken},
			{Key: "alt", Value: "json"},
		})
	default:
		return nil, fmt.Errorf("%w: unknown operation %T", ErrConstruction, op)
	}
}

func redirectURI(scheme string) string {
	return scheme + ":code"
}

func (b *Builder) build(method, base, path string, params []Param) (*Request, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("%w: empty base url", ErrConstruction)
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q is not absolute", ErrConstruction, base)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + path
	u.RawPath = ""

	params = sortedParams(params)
	req := &Request{
		Method: method,
		URL:    u,
		Header: http.Header{},
	}
	req.Header.Set("Content-Type", contentTypeForm)

	switch method {
	case http.MethodGet:
		q := url.Values{}
		for _, p := range params {
			q.Set(p.Key, p.Value)
		}
		u.RawQuery = q.Encode()
	default:
		u.RawQuery = ""
		req.Body = EncodeForm(params)
	}

	return req, nil
}

func sortedParams(params []Param) []Param {
	out := make([]Param, len(params))
	copy(out, params)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// Params returns the request parameters, from the query for GET requests and
// from the form body otherwise.
func (r *Request) Params() ([]Param, error) {
	if r == nil {
		return nil, nil
	}
	if r.Method == http.MethodGet {
		if r.URL == nil {
			return nil, nil
		}
		q := r.URL.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Param, 0, len(keys))
		for _, k := range keys {
			out = append(out, Param{Key: k, Value: q.Get(k)})
		}
		return out, nil
	}
	return DecodeForm(r.Body)
}

// Param returns the value of key and whether it was present.
func (r *Request) Param(key string) (string, bool) {
	params, err := r.Params()
	if err != nil {
		return "", false
	}
	for _, p := range params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// HTTPRequest converts the descriptor into a *http.Request bound to ctx.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	if r == nil || r.URL == nil {
		return nil, fmt.Errorf("%w: nil request", ErrConstruction)
	}
	var body *bytes.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, r.Method, r.URL.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, r.Method, r.URL.String(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	for k, values := range r.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// String renders the method and URL, omitting the body.
func (r *Request) String() string {
	if r == nil || r.URL == nil {
		return "<nil>"
	}
	return r.Method + " " + r.URL.Redacted()
}
