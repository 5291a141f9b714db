package goSignIn

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	internalaudit "github.com/MrEthical07/goSignIn/internal/audit"
	"github.com/MrEthical07/goSignIn/jwt"
	"github.com/MrEthical07/goSignIn/request"
)

// Engine defines a public type used by goSignIn APIs.
//
// Engine holds the current Auth and User of one signed-in Google account and
// runs the sign-in, refresh and profile operations against it. All methods
// are safe for concurrent use.
type Engine struct {
	config    Config
	clientID  string
	scheme    string
	builder   *request.Builder
	transport Transport
	opener    RedirectOpener
	idParser  *jwt.Parser
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	now       func() time.Time
	owned     []func() error

	mu             sync.RWMutex
	store          TokenStore
	auth           *Auth
	user           *User
	scopes         ScopeSet
	pendingAttempt string
	authSeq        uint64
	listeners      []listenerEntry
	nextListener   uint64
	closed         bool
	inflight       sync.WaitGroup

	// persistMu orders durable writes; persistedSeq is the authSeq of the
	// last commit written to the store.
	persistMu    sync.Mutex
	persistedSeq uint64
}

type listenerEntry struct {
	id       uint64
	listener Listener
}

// Close waits for in-flight exchanges and refreshes, flushes the audit
// dispatcher and releases stores opened by [Builder.Build]. Operations
// started afterwards fail with [ErrEngineClosed].
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.inflight.Wait()
	e.audit.Close()

	var errs []error
	for i := len(e.owned) - 1; i >= 0; i-- {
		if err := e.owned[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AuditDropped returns the number of audit events dropped due to backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// ClientID returns the configured OAuth client id.
func (e *Engine) ClientID() string {
	return e.clientID
}

// RedirectScheme returns the URL scheme the authorization server redirects
// back to. It is empty when no client id is configured.
func (e *Engine) RedirectScheme() string {
	return e.scheme
}

// Auth returns a copy of the current token set, or nil when signed out.
func (e *Engine) Auth() *Auth {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneAuth(e.auth)
}

// User returns a copy of the last fetched profile. It survives [Engine.SignOut].
func (e *Engine) User() *User {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneUser(e.user)
}

// IsSignedIn reports whether a token set is held.
func (e *Engine) IsSignedIn() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.auth != nil
}

// Scopes returns the scopes the next sign-in will request, sorted.
func (e *Engine) Scopes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scopes.List()
}

// AddScope adds scope to the next sign-in request. Blank scopes are ignored.
func (e *Engine) AddScope(scope string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scopes.Add(scope)
}

// RemoveScope removes scope, including the profile and email defaults.
func (e *Engine) RemoveScope(scope string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scopes.Remove(scope)
}

// Subscribe registers l for sign-in results and returns a function that
// removes it again. The returned function is idempotent.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}

	e.mu.Lock()
	e.nextListener++
	id := e.nextListener
	e.listeners = append(e.listeners, listenerEntry{id: id, listener: l})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, entry := range e.listeners {
				if entry.id == id {
					e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (e *Engine) notify(ctx context.Context, result SignInResult) {
	e.mu.RLock()
	listeners := make([]Listener, 0, len(e.listeners))
	for _, entry := range e.listeners {
		listeners = append(listeners, entry.listener)
	}
	e.mu.RUnlock()

	for _, l := range listeners {
		l.OnSignIn(ctx, result)
	}
}

// SetStore replaces the token store and re-reads Auth and User from it.
// Records that fail to load leave the corresponding in-memory value nil and
// are reported in the returned error.
func (e *Engine) SetStore(ctx context.Context, s TokenStore) error {
	if s == nil {
		return errors.New("goSignIn: nil token store")
	}

	auth, authErr := s.LoadAuth(ctx)
	user, userErr := s.LoadUser(ctx)

	e.mu.Lock()
	e.store = s
	e.auth = auth
	e.user = user
	e.mu.Unlock()

	if authErr != nil {
		e.storeFailure(ctx, "load_auth", authErr)
	}
	if userErr != nil {
		e.storeFailure(ctx, "load_user", userErr)
	}
	return errors.Join(authErr, userErr)
}

// goAsync runs fn on its own goroutine unless the engine is closed.
func (e *Engine) goAsync(fn func()) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	e.inflight.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.inflight.Done()
		fn()
	}()
	return true
}

func (e *Engine) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// fetch builds op, sends it and records the round-trip latency.
func (e *Engine) fetch(ctx context.Context, op request.Operation) ([]byte, error) {
	req, err := e.builder.Build(op)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := e.transport.Do(ctx, req)
	e.metrics.Observe(MetricTransportLatency, time.Since(start))
	return data, err
}

// replaceAuth installs a as the current token set and persists it.
func (e *Engine) replaceAuth(ctx context.Context, a *Auth) {
	e.mu.Lock()
	e.auth = cloneAuth(a)
	e.authSeq++
	seq := e.authSeq
	st := e.store
	e.mu.Unlock()

	e.persistAuth(ctx, st, seq, a)
}

func (e *Engine) replaceUser(ctx context.Context, u *User) {
	e.mu.Lock()
	e.user = cloneUser(u)
	st := e.store
	e.mu.Unlock()

	if st == nil {
		return
	}
	if err := st.SaveUser(ctx, u); err != nil {
		e.storeFailure(ctx, "save_user", err)
	}
}

// persistAuth writes a unless a later commit already reached the store.
func (e *Engine) persistAuth(ctx context.Context, st TokenStore, seq uint64, a *Auth) {
	err := e.persistOrdered(seq, st, func() error { return st.SaveAuth(ctx, a) })
	if err != nil {
		e.storeFailure(ctx, "save_auth", err)
	}
}

func (e *Engine) persistOrdered(seq uint64, st TokenStore, write func() error) error {
	if st == nil {
		return nil
	}

	e.persistMu.Lock()
	defer e.persistMu.Unlock()
	if seq <= e.persistedSeq {
		return nil
	}
	e.persistedSeq = seq
	return write()
}

// storeFailure records a store error. Persistence is best effort: the
// in-memory state stays authoritative and callers are not failed.
func (e *Engine) storeFailure(ctx context.Context, op string, err error) {
	log.Printf("goSignIn: token store %s failed: %v", op, err)
	e.metricInc(MetricStoreFailure)
	e.emitAudit(ctx, auditEventStoreFailure, false, "", err, func() map[string]string {
		return map[string]string{"op": op}
	})
}

func (e *Engine) currentAuth() *Auth {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneAuth(e.auth)
}

func cloneAuth(a *Auth) *Auth {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
