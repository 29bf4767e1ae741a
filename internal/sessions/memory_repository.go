package sessions

import (
	"context"
	"sync"
	"time"
)

type successorLink struct {
	next  string
	until time.Time
}

// MemoryRepository keeps sessions in process; used when neither Redis nor Mongo is configured.
type MemoryRepository struct {
	mu    sync.Mutex
	byRT  map[string]Session
	links map[string]successorLink
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byRT: map[string]Session{}, links: map[string]successorLink{}}
}

func (m *MemoryRepository) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byRT[s.RefreshToken] = *s
	return nil
}

func (m *MemoryRepository) ConsumeByRefresh(_ context.Context, refresh string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byRT[refresh]
	if !ok {
		return nil, nil
	}
	delete(m.byRT, refresh)
	return &s, nil
}

func (m *MemoryRepository) DeleteByRefresh(_ context.Context, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byRT, refresh)
	delete(m.links, refresh)
	return nil
}

func (m *MemoryRepository) LinkSuccessor(_ context.Context, refresh, next string, grace time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, l := range m.links {
		if now.After(l.until) {
			delete(m.links, k)
		}
	}
	m.links[refresh] = successorLink{next: next, until: now.Add(grace)}
	return nil
}

func (m *MemoryRepository) Successor(_ context.Context, refresh string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[refresh]
	if !ok || time.Now().After(l.until) {
		return nil, nil
	}
	s, ok := m.byRT[l.next]
	if !ok || s.Expired(time.Now().UTC()) {
		return nil, nil
	}
	return &s, nil
}
