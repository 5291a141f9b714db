package store

import (
	"context"
	"sync"

	"github.com/MrEthical07/goSignIn/token"
)

// Memory keeps records in process memory. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	auth *token.Auth
	user *token.User
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// LoadAuth returns a copy of the stored Auth, or nil when absent.
func (m *Memory) LoadAuth(ctx context.Context) (*token.Auth, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.auth == nil {
		return nil, nil
	}
	a := *m.auth
	return &a, nil
}

// LoadUser returns a copy of the stored User, or nil when absent.
func (m *Memory) LoadUser(ctx context.Context) (*token.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

// SaveAuth stores a copy of a. A nil value removes the record.
func (m *Memory) SaveAuth(ctx context.Context, a *token.Auth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a == nil {
		m.auth = nil
		return nil
	}
	cp := *a
	m.auth = &cp
	return nil
}

// SaveUser stores a copy of u. A nil value removes the record.
func (m *Memory) SaveUser(ctx context.Context, u *token.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u == nil {
		m.user = nil
		return nil
	}
	cp := *u
	m.user = &cp
	return nil
}

// Clear removes both records.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.auth = nil
	m.user = nil
	m.mu.Unlock()
	return nil
}
