package goSignIn

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name:      "empty client id valid",
			mutate:    func(c *Config) { c.ClientID = "" },
			wantValid: true,
		},
		{
			name:      "relative endpoint invalid",
			mutate:    func(c *Config) { c.Endpoints.TokenBaseURL = "/token" },
			wantValid: false,
		},
		{
			name:      "transport timeout zero invalid",
			mutate:    func(c *Config) { c.Transport.Timeout = 0 },
			wantValid: false,
		},
		{
			name:      "transport timeout too large invalid",
			mutate:    func(c *Config) { c.Transport.Timeout = 6 * time.Minute },
			wantValid: false,
		},
		{
			name:      "expiry leeway negative invalid",
			mutate:    func(c *Config) { c.Token.ExpiryLeeway = -time.Second },
			wantValid: false,
		},
		{
			name:      "expiry leeway valid",
			mutate:    func(c *Config) { c.Token.ExpiryLeeway = time.Minute },
			wantValid: true,
		},
		{
			name:      "id token leeway invalid",
			mutate:    func(c *Config) { c.IDToken.Leeway = 6 * time.Minute },
			wantValid: false,
		},
		{
			name:      "id token blank kid invalid",
			mutate:    func(c *Config) { c.IDToken.VerifyKeys = map[string][]byte{" ": []byte("x")} },
			wantValid: false,
		},
		{
			name:      "redis store without addr valid",
			mutate:    func(c *Config) { c.Store.Kind = StoreRedis },
			wantValid: true,
		},
		{
			name: "redis negative db invalid",
			mutate: func(c *Config) {
				c.Store.Kind = StoreRedis
				c.Store.RedisDB = -1
			},
			wantValid: false,
		},
		{
			name:      "sqlite without path invalid",
			mutate:    func(c *Config) { c.Store.Kind = StoreSQLite },
			wantValid: false,
		},
		{
			name:      "unknown store invalid",
			mutate:    func(c *Config) { c.Store.Kind = "etcd" },
			wantValid: false,
		},
		{
			name: "audit buffer zero invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name:      "latency without metrics invalid",
			mutate:    func(c *Config) { c.Metrics.EnableLatencyHistograms = true },
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.ClientID = testClientID
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuildConfigImmutabilityAgainstExternalMutation(t *testing.T) {
	cfg := defaultConfig()
	cfg.ClientID = testClientID
	cfg.Scopes.Custom = []string{testScope}

	b := New().WithConfig(cfg)
	cfg.Scopes.Custom[0] = "mutated"
	cfg.ClientID = "other"

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if engine.ClientID() != testClientID {
		t.Fatalf("client id mutated through caller config: %q", engine.ClientID())
	}
	scopes := strings.Join(engine.Scopes(), " ")
	if !strings.Contains(scopes, testScope) || strings.Contains(scopes, "mutated") {
		t.Fatalf("scopes mutated through caller config: %q", scopes)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Transport.Timeout = 0
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected Build to reject invalid config")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GOSIGNIN_CLIENT_ID", " "+testClientID+" ")
	t.Setenv("GOSIGNIN_EMAIL_SCOPE", "false")
	t.Setenv("GOSIGNIN_SCOPES", "openid, ,https://www.googleapis.com/auth/drive.readonly")
	t.Setenv("GOSIGNIN_TIMEOUT", "5s")
	t.Setenv("GOSIGNIN_EXPIRY_LEEWAY", "1m")
	t.Setenv("GOSIGNIN_STORE", "SQLite")
	t.Setenv("GOSIGNIN_SQLITE_PATH", "/tmp/gosignin.db")
	t.Setenv("GOSIGNIN_METRICS_ENABLED", "true")
	t.Setenv("GOSIGNIN_METRICS_LATENCY", "true")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv failed: %v", err)
	}

	if cfg.ClientID != testClientID {
		t.Fatalf("ClientID = %q", cfg.ClientID)
	}
	if !cfg.Scopes.Profile || cfg.Scopes.Email {
		t.Fatalf("unexpected scope toggles %+v", cfg.Scopes)
	}
	if len(cfg.Scopes.Custom) != 2 || cfg.Scopes.Custom[0] != "openid" {
		t.Fatalf("unexpected custom scopes %v", cfg.Scopes.Custom)
	}
	if cfg.Transport.Timeout != 5*time.Second || cfg.Token.ExpiryLeeway != time.Minute {
		t.Fatalf("unexpected durations %v %v", cfg.Transport.Timeout, cfg.Token.ExpiryLeeway)
	}
	if cfg.Store.Kind != StoreSQLite || cfg.Store.SQLitePath != "/tmp/gosignin.db" {
		t.Fatalf("unexpected store %+v", cfg.Store)
	}
	if !cfg.Metrics.Enabled || !cfg.Metrics.EnableLatencyHistograms {
		t.Fatalf("unexpected metrics %+v", cfg.Metrics)
	}
	if cfg.Endpoints.TokenBaseURL != defaultConfig().Endpoints.TokenBaseURL {
		t.Fatalf("expected default token endpoint, got %q", cfg.Endpoints.TokenBaseURL)
	}
}

func TestLoadConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("GOSIGNIN_STORE", "sqlite")
	t.Setenv("GOSIGNIN_SQLITE_PATH", "")

	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected sqlite without a path to be rejected")
	}
}

func TestLoadConfigFromEnvBadDuration(t *testing.T) {
	t.Setenv("GOSIGNIN_TIMEOUT", "soon")

	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected parse error for a malformed duration")
	}
}
