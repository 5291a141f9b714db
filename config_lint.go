package goSignIn

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// LintSeverity ranks a [LintWarning].
type LintSeverity int

const (
	// LintInfo flags a choice worth knowing about.
	LintInfo LintSeverity = iota
	// LintWarn flags a setting that weakens persistence or validation.
	LintWarn
	// LintHigh flags a setting that should not ship.
	LintHigh
)

// String returns the severity label.
func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is one finding of [Config.Lint].
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the list of findings for a configuration.
type LintResult []LintWarning

// Codes returns the finding codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns findings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError returns an error listing findings at or above min, or nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, 0, len(hits))
	for _, w := range hits {
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

// Lint reports settings that are valid but risky. Unlike [Config.Validate]
// it never rejects a configuration.
func (c *Config) Lint() LintResult {
	var out LintResult
	add := func(code string, sev LintSeverity, msg string) {
		out = append(out, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	for name, base := range map[string]string{
		"AuthBaseURL":    c.Endpoints.AuthBaseURL,
		"TokenBaseURL":   c.Endpoints.TokenBaseURL,
		"ProfileBaseURL": c.Endpoints.ProfileBaseURL,
	} {
		if insecureEndpoint(base) {
			add("insecure_endpoint", LintHigh, name+" sends tokens over plain HTTP to a non-loopback host")
		}
	}

	if !c.IDToken.VerifyAudience {
		add("id_token_audience_unchecked", LintHigh, "ID tokens issued to other clients are accepted")
	}
	if len(c.IDToken.VerifyKeys) == 0 {
		add("id_token_unverified", LintWarn, "ID token signatures are not checked")
	}
	if c.IDToken.Leeway > time.Minute {
		add("leeway_large", LintWarn, "ID token leeway above 1m")
	}

	switch c.Store.Kind {
	case StoreMemory:
		add("memory_store", LintInfo, "tokens are lost when the process exits")
	case StoreRedis:
		if c.Store.RedisRetention == 0 {
			add("redis_no_retention", LintWarn, "the refresh token expires from Redis together with the access token")
		}
	}

	if c.Token.ExpiryLeeway == 0 {
		add("expiry_leeway_zero", LintInfo, "an access token may expire while a request is in flight")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "sign-in lifecycle events are not audited")
	}

	return out
}

func insecureEndpoint(base string) bool {
	u, err := url.Parse(base)
	if err != nil || !strings.EqualFold(u.Scheme, "http") {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return false
	}
	ip := net.ParseIP(host)
	return ip == nil || !ip.IsLoopback()
}
