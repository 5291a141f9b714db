package internaldefs

import (
	goSignIn "github.com/MrEthical07/goSignIn"
)

// CounterDef binds a counter ID to its exported name and help text.
type CounterDef struct {
	ID   goSignIn.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSignIn APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSignIn.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goSignIn.MetricSignInStarted, Name: "gosignin_sign_in_started_total", Help: "Authorization URLs handed to the redirect opener."},
	{ID: goSignIn.MetricSignInRejected, Name: "gosignin_sign_in_rejected_total", Help: "Sign-in calls rejected before or while opening the browser."},
	{ID: goSignIn.MetricRedirectHandled, Name: "gosignin_redirect_handled_total", Help: "Redirects that started a code exchange."},
	{ID: goSignIn.MetricRedirectIgnored, Name: "gosignin_redirect_ignored_total", Help: "Redirects ignored for a foreign scheme or missing code."},
	{ID: goSignIn.MetricExchangeSuccess, Name: "gosignin_exchange_success_total", Help: "Authorization codes traded for tokens."},
	{ID: goSignIn.MetricExchangeFailure, Name: "gosignin_exchange_failure_total", Help: "Failed code exchanges."},
	{ID: goSignIn.MetricRefreshSuccess, Name: "gosignin_refresh_success_total", Help: "Refreshes merged into the current token set."},
	{ID: goSignIn.MetricRefreshFailure, Name: "gosignin_refresh_failure_total", Help: "Failed refreshes."},
	{ID: goSignIn.MetricAccessTokenCached, Name: "gosignin_access_token_cached_total", Help: "Access tokens served without network I/O."},
	{ID: goSignIn.MetricProfileSuccess, Name: "gosignin_profile_success_total", Help: "Decoded profile fetches."},
	{ID: goSignIn.MetricProfileFailure, Name: "gosignin_profile_failure_total", Help: "Failed profile fetches."},
	{ID: goSignIn.MetricSignOut, Name: "gosignin_sign_out_total", Help: "Sign-out calls."},
	{ID: goSignIn.MetricStoreFailure, Name: "gosignin_store_failure_total", Help: "Failed token store reads and writes."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSignIn.MetricTransportLatency, Name: "gosignin_transport_latency_seconds", Help: "Round-trip latency of Google endpoint requests."},
}

// HistogramBounds are the bucket upper bounds in seconds.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix names each bucket in OTel instrument names.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling short input.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets turns per-bucket counts into the running totals
// Prometheus expects.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
