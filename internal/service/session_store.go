package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"login-session/internal/domain"
	"login-session/internal/repository"
)

var (
	ErrInvalidExpiry  = errors.New("session expiry must be after creation")
	ErrMissingUserID  = errors.New("session requires a user id")
	ErrSessionIDSpace = errors.New("could not allocate a unique session id")
)

const (
	sessionIDBytes        = 32 // 256 bits
	maxSessionIDAttempts  = 3
	sessionIDLogPrefixLen = 8
)

// SessionStore aplica las reglas de sesion (ids aleatorios, expiracion
// perezosa) sobre cualquier backend de repository.SessionRepository.
type SessionStore struct {
	repo  repository.SessionRepository
	now   func() time.Time
	newID func() (string, error)
}

func NewSessionStore(repo repository.SessionRepository) *SessionStore {
	return &SessionStore{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: GenerateSessionID,
	}
}

// GenerateSessionID genera un id de sesion criptograficamente aleatorio.
func GenerateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create guarda una sesion nueva para userID. expiresAt nil crea una sesion
// de navegador sin expiracion server-side.
func (s *SessionStore) Create(ctx context.Context, userID string, expiresAt *time.Time) (domain.Session, error) {
	if userID == "" {
		return domain.Session{}, ErrMissingUserID
	}

	now := s.now()
	if expiresAt != nil && !expiresAt.After(now) {
		return domain.Session{}, ErrInvalidExpiry
	}

	session := domain.Session{
		UserID:    userID,
		CreatedAt: now,
	}
	if expiresAt != nil {
		exp := expiresAt.UTC()
		session.ExpiresAt = &exp
	}

	for attempt := 0; attempt < maxSessionIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return domain.Session{}, err
		}
		session.ID = id

		err = s.repo.Insert(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return domain.Session{}, fmt.Errorf("insert session: %w", err)
		}
	}
	return domain.Session{}, ErrSessionIDSpace
}

// Get devuelve nil si la sesion no existe o ya expiro. Un registro expirado
// se deja en el backend; lo limpia el sweeper.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, nil
	}
	session, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.ExpiredAt(s.now()) {
		return nil, nil
	}
	return &session, nil
}

// Delete es idempotente.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired borra fisicamente las sesiones vencidas.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

// shortID acorta un id de sesion para logs.
func shortID(id string) string {
	if len(id) <= sessionIDLogPrefixLen {
		return id
	}
	return id[:sessionIDLogPrefixLen]
}
