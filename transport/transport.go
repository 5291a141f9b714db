package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/MrEthical07/goSignIn/request"
)

var (
	// ErrNetwork is returned when the request could not be sent or the response
	// could not be read.
	ErrNetwork = errors.New("network error")
	// ErrNoData is returned when a successful response carries no body.
	ErrNoData = errors.New("no data")
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

const maxResponseBytes = 1 << 20

// HTTPError reports a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return "http error: status " + strconv.Itoa(e.StatusCode)
}

// Transport executes request descriptors.
//
// Do returns the raw response payload, or one of [ErrNetwork], [ErrNoData] or
// *[HTTPError]. Implementations must be safe for concurrent use.
type Transport interface {
	Do(ctx context.Context, req *request.Request) ([]byte, error)
}

// Config tunes the HTTP transport.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// HTTP is a [Transport] backed by net/http.
type HTTP struct {
	client    *http.Client
	userAgent string
}

// NewHTTP returns an HTTP transport with its own client.
func NewHTTP(cfg Config) *HTTP {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTP{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
	}
}

// NewHTTPWithClient wraps an existing client. A nil client uses a fresh one
// with [DefaultTimeout].
func NewHTTPWithClient(client *http.Client, userAgent string) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTP{client: client, userAgent: userAgent}
}

// Do implements [Transport].
func (t *HTTP) Do(ctx context.Context, req *request.Request) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Cache-Control", "no-cache")
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: data}
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}

	return data, nil
}
