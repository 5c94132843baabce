package repository

import (
	"context"
	"sync"
	"time"

	"login-session/internal/domain"
)

// MemorySessionRepository guarda sesiones en un mapa protegido por RWMutex.
// Pensado para desarrollo y tests; no sobrevive reinicios.
type MemorySessionRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		items: make(map[string]domain.Session),
	}
}

func (r *MemorySessionRepository) Insert(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[session.ID]; ok {
		return ErrConflict
	}
	r.items[session.ID] = cloneSession(session)
	return nil
}

func (r *MemorySessionRepository) GetByID(_ context.Context, id string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.items[id]
	if !ok {
		return domain.Session{}, ErrNotFound
	}
	return cloneSession(session), nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *MemorySessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, session := range r.items {
		if session.ExpiredAt(now) {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

// Len devuelve cuantos registros hay guardados, expirados incluidos.
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func cloneSession(s domain.Session) domain.Session {
	if s.ExpiresAt != nil {
		exp := *s.ExpiresAt
		s.ExpiresAt = &exp
	}
	return s
}
