package goSignIn

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goSignIn/request"
	"github.com/MrEthical07/goSignIn/store"
	"github.com/MrEthical07/goSignIn/transport"
	"github.com/caarlos0/env/v11"
)

// Config defines a public type used by goSignIn APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	ClientID  string
	Scopes    ScopeConfig
	Endpoints EndpointConfig
	Transport TransportConfig
	Token     TokenConfig
	IDToken   IDTokenConfig
	Store     StoreConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SCOPE CONFIG
====================================
*/

// ScopeConfig selects the scopes requested at sign-in. Profile and Email are
// the mandatory defaults and can be switched off individually.
type ScopeConfig struct {
	Profile bool
	Email   bool
	Custom  []string
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig overrides the Google base URLs, mainly for tests.
type EndpointConfig struct {
	AuthBaseURL    string
	TokenBaseURL   string
	ProfileBaseURL string
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig tunes the default HTTP transport. It is ignored when a
// transport is supplied through [Builder.WithTransport].
type TransportConfig struct {
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls access token reuse.
type TokenConfig struct {
	// ExpiryLeeway treats a cached access token as expired this long before
	// its ExpiresAt. Zero reuses a token until the exact expiry instant.
	ExpiryLeeway time.Duration
}

/*
====================================
ID TOKEN CONFIG
====================================
*/

// IDTokenConfig defines a public type used by goSignIn APIs.
//
// IDTokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type IDTokenConfig struct {
	Issuers        []string
	VerifyKeys     map[string][]byte
	Leeway         time.Duration
	VerifyAudience bool
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreKind selects the built-in token store.
type StoreKind string

const (
	// StoreMemory keeps tokens in process memory.
	StoreMemory StoreKind = "memory"
	// StoreRedis persists tokens in Redis.
	StoreRedis StoreKind = "redis"
	// StoreSQLite persists tokens in a local SQLite file.
	StoreSQLite StoreKind = "sqlite"
)

// StoreConfig selects and configures the token store opened by [Builder.Build]
// when none is supplied through [Builder.WithStore].
type StoreConfig struct {
	Kind           StoreKind
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string
	RedisRetention time.Duration
	SQLitePath     string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goSignIn APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goSignIn APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Scopes: ScopeConfig{
			Profile: true,
			Email:   true,
		},
		Endpoints: EndpointConfig{
			AuthBaseURL:    request.DefaultAuthBaseURL,
			TokenBaseURL:   request.DefaultTokenBaseURL,
			ProfileBaseURL: request.DefaultProfileBaseURL,
		},
		Transport: TransportConfig{
			Timeout: transport.DefaultTimeout,
		},
		Token: TokenConfig{
			ExpiryLeeway: 0,
		},
		IDToken: IDTokenConfig{
			Leeway:         30 * time.Second,
			VerifyAudience: true,
		},
		Store: StoreConfig{
			Kind:           StoreMemory,
			RedisPrefix:    store.DefaultRedisPrefix,
			RedisRetention: store.DefaultRetention,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Scopes.Custom = cloneStrings(cfg.Scopes.Custom)
	out.IDToken.Issuers = cloneStrings(cfg.IDToken.Issuers)
	if cfg.IDToken.VerifyKeys != nil {
		out.IDToken.VerifyKeys = make(map[string][]byte, len(cfg.IDToken.VerifyKeys))
		for kid, key := range cfg.IDToken.VerifyKeys {
			out.IDToken.VerifyKeys[kid] = cloneBytes(key)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks structural configuration. An empty ClientID is accepted
// here; operations that need it fail with [ErrNoClientID].
func (c *Config) Validate() error {
	// Endpoints
	for name, base := range map[string]string{
		"AuthBaseURL":    c.Endpoints.AuthBaseURL,
		"TokenBaseURL":   c.Endpoints.TokenBaseURL,
		"ProfileBaseURL": c.Endpoints.ProfileBaseURL,
	} {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("Endpoints %s must be an absolute URL", name)
		}
	}

	// Transport
	if c.Transport.Timeout <= 0 {
		return errors.New("Transport Timeout must be > 0")
	}
	if c.Transport.Timeout > 5*time.Minute {
		return errors.New("Transport Timeout must be <= 5m")
	}

	// Token
	if c.Token.ExpiryLeeway < 0 {
		return errors.New("Token ExpiryLeeway must be >= 0")
	}
	if c.Token.ExpiryLeeway > 10*time.Minute {
		return errors.New("Token ExpiryLeeway must be <= 10m")
	}

	// ID token
	if c.IDToken.Leeway < 0 || c.IDToken.Leeway > 5*time.Minute {
		return errors.New("IDToken Leeway must be between 0 and 5m")
	}
	for kid := range c.IDToken.VerifyKeys {
		if strings.TrimSpace(kid) == "" {
			return errors.New("IDToken VerifyKeys contains empty kid")
		}
	}

	// Store
	switch c.Store.Kind {
	case StoreMemory:
	case StoreRedis:
		if c.Store.RedisDB < 0 {
			return errors.New("Store RedisDB must be >= 0")
		}
		if c.Store.RedisRetention < 0 {
			return errors.New("Store RedisRetention must be >= 0")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("Store SQLitePath is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unsupported Store Kind %q", c.Store.Kind)
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

/*
====================================
ENVIRONMENT
====================================
*/

// signInEnv holds raw env values for the sign-in client.
type signInEnv struct {
	ClientID         string        `env:"GOSIGNIN_CLIENT_ID"`
	ProfileScope     bool          `env:"GOSIGNIN_PROFILE_SCOPE"      envDefault:"true"`
	EmailScope       bool          `env:"GOSIGNIN_EMAIL_SCOPE"        envDefault:"true"`
	Scopes           []string      `env:"GOSIGNIN_SCOPES"             envSeparator:","`
	AuthBaseURL      string        `env:"GOSIGNIN_AUTH_BASE_URL"`
	TokenBaseURL     string        `env:"GOSIGNIN_TOKEN_BASE_URL"`
	ProfileBaseURL   string        `env:"GOSIGNIN_PROFILE_BASE_URL"`
	Timeout          time.Duration `env:"GOSIGNIN_TIMEOUT"            envDefault:"30s"`
	UserAgent        string        `env:"GOSIGNIN_USER_AGENT"`
	ExpiryLeeway     time.Duration `env:"GOSIGNIN_EXPIRY_LEEWAY"      envDefault:"0s"`
	Store            string        `env:"GOSIGNIN_STORE"              envDefault:"memory"`
	RedisAddr        string        `env:"GOSIGNIN_REDIS_ADDR"`
	RedisPassword    string        `env:"GOSIGNIN_REDIS_PASSWORD"`
	RedisDB          int           `env:"GOSIGNIN_REDIS_DB"           envDefault:"0"`
	RedisPrefix      string        `env:"GOSIGNIN_REDIS_PREFIX"       envDefault:"gsi"`
	SQLitePath       string        `env:"GOSIGNIN_SQLITE_PATH"`
	AuditEnabled     bool          `env:"GOSIGNIN_AUDIT_ENABLED"      envDefault:"false"`
	MetricsEnabled   bool          `env:"GOSIGNIN_METRICS_ENABLED"    envDefault:"false"`
	LatencyHistogram bool          `env:"GOSIGNIN_METRICS_LATENCY"    envDefault:"false"`
}

// LoadConfigFromEnv overlays GOSIGNIN_* environment variables onto
// [DefaultConfig] and validates the result.
func LoadConfigFromEnv() (Config, error) {
	var raw signInEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := defaultConfig()
	cfg.ClientID = strings.TrimSpace(raw.ClientID)
	cfg.Scopes.Profile = raw.ProfileScope
	cfg.Scopes.Email = raw.EmailScope
	cfg.Scopes.Custom = trimCSV(raw.Scopes)
	if raw.AuthBaseURL != "" {
		cfg.Endpoints.AuthBaseURL = raw.AuthBaseURL
	}
	if raw.TokenBaseURL != "" {
		cfg.Endpoints.TokenBaseURL = raw.TokenBaseURL
	}
	if raw.ProfileBaseURL != "" {
		cfg.Endpoints.ProfileBaseURL = raw.ProfileBaseURL
	}
	cfg.Transport.Timeout = raw.Timeout
	cfg.Transport.UserAgent = raw.UserAgent
	cfg.Token.ExpiryLeeway = raw.ExpiryLeeway
	cfg.Store.Kind = StoreKind(strings.ToLower(strings.TrimSpace(raw.Store)))
	cfg.Store.RedisAddr = raw.RedisAddr
	cfg.Store.RedisPassword = raw.RedisPassword
	cfg.Store.RedisDB = raw.RedisDB
	cfg.Store.RedisPrefix = raw.RedisPrefix
	cfg.Store.SQLitePath = raw.SQLitePath
	cfg.Audit.Enabled = raw.AuditEnabled
	cfg.Metrics.Enabled = raw.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = raw.MetricsEnabled && raw.LatencyHistogram

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
