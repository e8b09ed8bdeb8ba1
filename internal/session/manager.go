package session

import (
	"context"
	"sync"

	"github.com/sandeepkv93/academiaplan/internal/notify"
	"github.com/sandeepkv93/academiaplan/internal/storage"
)

// Manager owns at most one active session and switches it on sign-in.
type Manager struct {
	mu       sync.Mutex
	kv       storage.KV
	notifier notify.Notifier
	base     Config
	current  *Session
}

func NewManager(kv storage.KV, notifier notify.Notifier, base Config) *Manager {
	return &Manager{kv: kv, notifier: notifier, base: base}
}

// SignIn stops the previous user's scheduler before opening and starting
// a session for userID.
func (m *Manager) SignIn(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
	cfg := m.base
	cfg.UserID = userID
	s, err := Open(ctx, m.kv, m.notifier, cfg)
	if err != nil {
		return nil, err
	}
	s.Start()
	m.current = s
	return s, nil
}

func (m *Manager) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}

// Current returns the active session, or nil when signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
