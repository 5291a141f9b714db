package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goSignIn "github.com/MrEthical07/goSignIn"
)

type fakeSource struct {
	mu         sync.Mutex
	token      string
	refreshed  string
	tokenErr   error
	refreshErr error
	refreshes  int
}

func (s *fakeSource) AccessToken(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.tokenErr
}

func (s *fakeSource) Refresh(context.Context) (*goSignIn.Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	s.token = s.refreshed
	return &goSignIn.Auth{AccessToken: s.refreshed}, nil
}

type headerLog struct {
	mu   sync.Mutex
	seen []string
}

func (l *headerLog) add(v string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, v)
}

func (l *headerLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

// newAPI accepts only requests carrying "Bearer <valid>" and echoes the body.
func newAPI(t *testing.T, valid string) (*httptest.Server, *headerLog) {
	t.Helper()
	seen := &headerLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") != "Bearer "+valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestBearerSetsAuthorizationHeader(t *testing.T) {
	srv, seen := newAPI(t, "ya29.valid")
	src := &fakeSource{token: "ya29.valid"}

	resp, err := Client(src, nil).Get(srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if seen.count() != 1 || src.refreshes != 0 {
		t.Fatalf("expected one call without refresh, got %d calls and %d refreshes", seen.count(), src.refreshes)
	}
}

func TestBearerDoesNotMutateCallerRequest(t *testing.T) {
	srv, _ := newAPI(t, "ya29.valid")
	src := &fakeSource{token: "ya29.valid"}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := Client(src, nil).Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got := req.Header.Get("Authorization"); got != "" {
		t.Fatalf("caller request was modified: %q", got)
	}
}

func TestBearerRetriesOnceAfterRefresh(t *testing.T) {
	srv, seen := newAPI(t, "ya29.fresh")
	src := &fakeSource{token: "ya29.stale", refreshed: "ya29.fresh"}

	resp, err := Client(src, nil).Post(srv.URL, "text/plain", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "payload" {
		t.Fatalf("expected replayed body, got %d %q", resp.StatusCode, body)
	}
	if src.refreshes != 1 || seen.count() != 2 {
		t.Fatalf("expected one refresh and two calls, got %d and %d", src.refreshes, seen.count())
	}
}

func TestBearerReturnsUnauthorizedWhenRefreshFails(t *testing.T) {
	srv, seen := newAPI(t, "ya29.fresh")
	src := &fakeSource{token: "ya29.stale", refreshErr: goSignIn.ErrNoRefreshToken}

	resp, err := Client(src, nil).Get(srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 passthrough, got %d", resp.StatusCode)
	}
	if seen.count() != 1 {
		t.Fatalf("expected no retry, got %d calls", seen.count())
	}
}

func TestBearerSkipsRetryForUnreplayableBody(t *testing.T) {
	srv, seen := newAPI(t, "ya29.fresh")
	src := &fakeSource{token: "ya29.stale", refreshed: "ya29.fresh"}

	req, _ := http.NewRequest(http.MethodPost, srv.URL, io.NopCloser(strings.NewReader("once")))
	req.GetBody = nil
	resp, err := Client(src, nil).Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized || src.refreshes != 0 || seen.count() != 1 {
		t.Fatalf("expected single 401 without refresh, got %d, %d refreshes, %d calls", resp.StatusCode, src.refreshes, seen.count())
	}
}

func TestBearerTokenErrorStopsRequest(t *testing.T) {
	srv, seen := newAPI(t, "ya29.valid")
	src := &fakeSource{tokenErr: goSignIn.ErrNotSignedIn}

	_, err := Client(src, nil).Get(srv.URL)
	if !errors.Is(err, goSignIn.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
	if seen.count() != 0 {
		t.Fatalf("request must not be sent without a token, got %d calls", seen.count())
	}
}
