package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSignIn/request"
)

// Fetcher builds op into a request, sends it, and returns the raw payload.
type Fetcher func(ctx context.Context, op request.Operation) ([]byte, error)

// Deps groups flow dependency sets. Root engine builds these per call and
// delegates to the matching flow implementation.
type Deps struct {
	Exchange    ExchangeDeps
	Refresh     RefreshDeps
	Profile     ProfileDeps
	AccessToken AccessTokenDeps
}

func nowOrDefault(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
