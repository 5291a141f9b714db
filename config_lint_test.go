package goSignIn

import (
	"testing"
	"time"
)

func TestLint_DefaultConfigHasNoHighFindings(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Lint().AsError(LintHigh); err != nil {
		t.Fatalf("default config should not fail AsError(LintHigh): %v", err)
	}

	codes := cfg.Lint().Codes()
	if !containsCode(codes, "memory_store") {
		t.Error("expected memory_store info for the default store")
	}
}

func TestLint_InsecureEndpoint(t *testing.T) {
	cfg := defaultConfig()
	cfg.Endpoints.TokenBaseURL = "http://tokens.example.com"
	if !containsCode(cfg.Lint().Codes(), "insecure_endpoint") {
		t.Error("expected insecure_endpoint warning")
	}
}

func TestLint_LoopbackHTTPAllowed(t *testing.T) {
	cfg := defaultConfig()
	cfg.Endpoints.AuthBaseURL = "http://127.0.0.1:8080"
	cfg.Endpoints.TokenBaseURL = "http://localhost:8080"
	cfg.Endpoints.ProfileBaseURL = "http://[::1]:8080"
	if containsCode(cfg.Lint().Codes(), "insecure_endpoint") {
		t.Error("loopback test servers should not warn")
	}
}

func TestLint_AudienceUnchecked(t *testing.T) {
	cfg := defaultConfig()
	cfg.IDToken.VerifyAudience = false
	for _, w := range cfg.Lint() {
		if w.Code == "id_token_audience_unchecked" {
			if w.Severity != LintHigh {
				t.Errorf("id_token_audience_unchecked should be HIGH, got %s", w.Severity)
			}
			return
		}
	}
	t.Error("expected id_token_audience_unchecked warning")
}

func TestLint_LargeLeeway(t *testing.T) {
	cfg := defaultConfig()
	cfg.IDToken.Leeway = 90 * time.Second
	if !containsCode(cfg.Lint().Codes(), "leeway_large") {
		t.Error("expected leeway_large warning")
	}
}

func TestLint_RedisWithoutRetention(t *testing.T) {
	cfg := defaultConfig()
	cfg.Store.Kind = StoreRedis
	cfg.Store.RedisRetention = 0
	codes := cfg.Lint().Codes()
	if !containsCode(codes, "redis_no_retention") {
		t.Error("expected redis_no_retention warning")
	}
	if containsCode(codes, "memory_store") {
		t.Error("memory_store must not be reported for the redis store")
	}
}

func TestLint_BySeverity(t *testing.T) {
	cfg := defaultConfig()
	cfg.IDToken.VerifyAudience = false
	ws := cfg.Lint()

	high := ws.BySeverity(LintHigh)
	if len(high) == 0 {
		t.Error("expected at least one HIGH severity warning")
	}
	for _, w := range high {
		if w.Severity < LintHigh {
			t.Errorf("BySeverity(LintHigh) returned warning with severity %s", w.Severity)
		}
	}
	if err := ws.AsError(LintHigh); err == nil {
		t.Error("expected AsError(LintHigh) to fail")
	}
}

func TestLint_AuditDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Audit.Enabled = false
	if !containsCode(cfg.Lint().Codes(), "audit_disabled") {
		t.Error("expected audit_disabled info")
	}

	cfg.Audit.Enabled = true
	if containsCode(cfg.Lint().Codes(), "audit_disabled") {
		t.Error("audit_disabled must clear once audit is on")
	}
}

// helpers

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
