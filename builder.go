package goSignIn

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/goSignIn/internal/audit"
	"github.com/MrEthical07/goSignIn/jwt"
	"github.com/MrEthical07/goSignIn/opener"
	"github.com/MrEthical07/goSignIn/request"
	"github.com/MrEthical07/goSignIn/store"
	"github.com/MrEthical07/goSignIn/token"
	"github.com/MrEthical07/goSignIn/transport"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goSignIn APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store     TokenStore
	transport Transport
	opener    RedirectOpener
	auditSink AuditSink
	listeners []Listener
	now       func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New starts from [DefaultConfig]. Nothing is opened or dialed until Build.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithClientID sets the OAuth client id.
func (b *Builder) WithClientID(clientID string) *Builder {
	b.config.ClientID = clientID
	return b
}

// WithRedis supplies the client used when Store.Kind is [StoreRedis]. A
// client supplied here is not closed by [Engine.Close].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore supplies a token store and overrides Store.Kind.
func (b *Builder) WithStore(s TokenStore) *Builder {
	b.store = s
	return b
}

// WithTransport supplies the transport and overrides the Transport config.
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithRedirectOpener supplies the opener used by [Engine.SignIn]. The default
// launches the system browser.
func (b *Builder) WithRedirectOpener(o RedirectOpener) *Builder {
	b.opener = o
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink has no effect unless Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithListener registers l before any operation can run.
func (b *Builder) WithListener(l Listener) *Builder {
	if l != nil {
		b.listeners = append(b.listeners, l)
	}
	return b
}

// WithClock overrides the clock used for token expiry and ID token checks.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the transport latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build validates the configuration, opens the configured token store when
// none was supplied, and loads any persisted Auth and User from it. A store
// that cannot be read is logged and the engine starts signed out.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- ID TOKEN PARSER --------
	idCfg := jwt.Config{
		Issuers:    cloneStrings(cfg.IDToken.Issuers),
		VerifyKeys: make(map[string][]byte, len(cfg.IDToken.VerifyKeys)),
		Leeway:     cfg.IDToken.Leeway,
		Now:        now,
	}
	for kid, key := range cfg.IDToken.VerifyKeys {
		idCfg.VerifyKeys[kid] = cloneBytes(key)
	}
	if cfg.IDToken.VerifyAudience {
		idCfg.ClientID = cfg.ClientID
	}
	idParser, err := jwt.NewParser(idCfg)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cloneConfig(cfg),
		clientID: cfg.ClientID,
		scheme:   token.RedirectScheme(cfg.ClientID),
		builder: request.NewBuilder(request.Endpoints{
			AuthBaseURL:    cfg.Endpoints.AuthBaseURL,
			TokenBaseURL:   cfg.Endpoints.TokenBaseURL,
			ProfileBaseURL: cfg.Endpoints.ProfileBaseURL,
		}),
		transport: b.transport,
		opener:    b.opener,
		idParser:  idParser,
		metrics:   NewMetrics(cfg.Metrics),
		now:       now,
		scopes:    token.NewScopeSet(cfg.Scopes.Profile, cfg.Scopes.Email, cfg.Scopes.Custom...),
	}

	if engine.transport == nil {
		engine.transport = transport.NewHTTP(transport.Config{
			Timeout:   cfg.Transport.Timeout,
			UserAgent: cfg.Transport.UserAgent,
		})
	}
	if engine.opener == nil {
		engine.opener = opener.NewBrowser()
	}

	// -------- TOKEN STORE --------
	st := b.store
	if st == nil {
		st, err = b.openStore(cfg.Store, engine)
		if err != nil {
			return nil, err
		}
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	for _, l := range b.listeners {
		engine.Subscribe(l)
	}

	if err := engine.SetStore(context.Background(), st); err != nil {
		log.Printf("goSignIn: starting signed out: %v", err)
	}

	b.built = true

	return engine, nil
}

// openStore opens the store named by cfg.Kind and registers the resources
// it created with engine so that Close releases them.
func (b *Builder) openStore(cfg StoreConfig, engine *Engine) (TokenStore, error) {
	switch cfg.Kind {
	case StoreRedis:
		client := b.redis
		if client == nil {
			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return nil, errors.New("Store RedisAddr is required when no redis client is supplied")
			}
			owned := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			engine.owned = append(engine.owned, owned.Close)
			client = owned
		}
		return store.NewRedis(client, cfg.RedisPrefix, cfg.RedisRetention), nil
	case StoreSQLite:
		s, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		engine.owned = append(engine.owned, s.Close)
		return s, nil
	default:
		return store.NewMemory(), nil
	}
}
