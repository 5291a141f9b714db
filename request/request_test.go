package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestBuildAuthorize(t *testing.T) {
	b := NewBuilder(DefaultEndpoints())
	req, err := b.Build(Authorize{
		ClientID:       "this-is-a-client-id",
		Scopes:         []string{"profile", "email", "this-is-a-scope"},
		RedirectScheme: "this-is-a-client-id",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if req.Method != http.MethodGet {
		t.Fatalf("expected GET, got %s", req.Method)
	}
	if req.URL.Host != "accounts.google.com" || req.URL.Path != "/o/oauth2/v2/auth" {
		t.Fatalf("unexpected authorize url %s", req.URL)
	}
	q := req.URL.Query()
	if got := q.Get("client_id"); got != "this-is-a-client-id" {
		t.Fatalf("expected client_id, got %q", got)
	}
	if got := q.Get("response_type"); got != "code" {
		t.Fatalf("expected response_type=code, got %q", got)
	}
	if got := q.Get("redirect_uri"); got != "this-is-a-client-id:code" {
		t.Fatalf("unexpected redirect_uri %q", got)
	}
	scopes := strings.Split(q.Get("scope"), " ")
	if !contains(scopes, "profile") || !contains(scopes, "this-is-a-scope") {
		t.Fatalf("expected profile and custom scope, got %v", scopes)
	}
	if len(req.Body) != 0 {
		t.Fatal("expected no body for GET")
	}
	if got := req.Header.Get("Content-Type"); got != contentTypeForm {
		t.Fatalf("expected form content type, got %q", got)
	}
}

func TestBuildExchangeCode(t *testing.T) {
	b := NewBuilder(DefaultEndpoints())
	req, err := b.Build(ExchangeCode{Code: "1234", ClientID: "a.b.c", RedirectScheme: "c.b.a"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if req.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", req.Method)
	}
	if req.URL.String() != "https://oauth2.googleapis.com/token" {
		t.Fatalf("unexpected token url %s", req.URL)
	}
	body := splitBody(string(req.Body))
	if body["code"] != "1234" {
		t.Fatalf("expected code=1234, got %q", body["code"])
	}
	if body["client_id"] != "a.b.c" {
		t.Fatalf("expected client_id=a.b.c, got %q", body["client_id"])
	}
	if body["grant_type"] != "authorization_code" {
		t.Fatalf("unexpected grant_type %q", body["grant_type"])
	}
	if body["redirect_uri"] != "c.b.a%3Acode" {
		t.Fatalf("expected escaped redirect_uri, got %q", body["redirect_uri"])
	}
}

func TestBuildRefreshToken(t *testing.T) {
	b := NewBuilder(DefaultEndpoints())
	req, err := b.Build(RefreshToken{ClientID: "client", RefreshToken: "1//refresh"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got, _ := req.Param("refresh_token"); got != "1//refresh" {
		t.Fatalf("expected refresh token, got %q", got)
	}
	if got, _ := req.Param("grant_type"); got != "refresh_token" {
		t.Fatalf("expected grant_type=refresh_token, got %q", got)
	}
	if _, ok := req.Param("redirect_uri"); ok {
		t.Fatal("refresh request must not carry redirect_uri")
	}
}

func TestBuildGetProfile(t *testing.T) {
	b := NewBuilder(DefaultEndpoints())
	req, err := b.Build(GetProfile{AccessToken: "ya29.token"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if req.URL.Host != "www.googleapis.com" || req.URL.Path != "/oauth2/v2/userinfo" {
		t.Fatalf("unexpected profile url %s", req.URL)
	}
	if got := req.URL.Query().Get("access_token"); got != "ya29.token" {
		t.Fatalf("expected access_token, got %q", got)
	}
	if got := req.URL.Query().Get("alt"); got != "json" {
		t.Fatalf("expected alt=json, got %q", got)
	}
}

func TestBuildRejectsMalformedBase(t *testing.T) {
	tests := []struct {
		name string
		base string
	}{
		{name: "empty", base: ""},
		{name: "relative", base: "oauth2.googleapis.com"},
		{name: "bad escape", base: "https://example.com/%zz"},
		{name: "control char", base: "https://exa\x7fmple.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(Endpoints{AuthBaseURL: tt.base, TokenBaseURL: tt.base, ProfileBaseURL: tt.base})
			if _, err := b.Build(RefreshToken{ClientID: "c", RefreshToken: "r"}); !errors.Is(err, ErrConstruction) {
				t.Fatalf("expected ErrConstruction, got %v", err)
			}
		})
	}
}

func TestBuildRejectsUnknownOperation(t *testing.T) {
	b := NewBuilder(DefaultEndpoints())
	if _, err := b.Build(nil); !errors.Is(err, ErrConstruction) {
		t.Fatalf("expected ErrConstruction, got %v", err)
	}
}

func TestHTTPRequestCarriesBodyAndHeaders(t *testing.T) {
	b := NewBuilder(DefaultEndpoints())
	req, err := b.Build(ExchangeCode{Code: "c", ClientID: "id", RedirectScheme: "di"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	httpReq, err := req.HTTPRequest(context.Background())
	if err != nil {
		t.Fatalf("HTTPRequest failed: %v", err)
	}
	if httpReq.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", httpReq.Method)
	}
	if got := httpReq.Header.Get("Content-Type"); got != contentTypeForm {
		t.Fatalf("expected form content type, got %q", got)
	}
	data, err := io.ReadAll(httpReq.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	if string(data) != string(req.Body) {
		t.Fatalf("expected body %q, got %q", req.Body, data)
	}
}

func splitBody(body string) map[string]string {
	out := map[string]string{}
	for _, component := range strings.Split(body, "&") {
		item := strings.Split(component, "=")
		out[item[0]] = item[len(item)-1]
	}
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
