package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"login-session/internal/domain"
	"login-session/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password too short")
)

const MinPasswordLen = 8

// CredentialVerifier verifica un usuario/password contra lo guardado.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (domain.User, error)
}

// CredentialService es el credential store: busqueda de usuario y
// comparacion bcrypt. Es de solo lectura salvo CreateUser.
type CredentialService struct {
	logger *zap.Logger
	users  repository.UserRepository
	cost   int
}

func NewCredentialService(logger *zap.Logger, users repository.UserRepository) *CredentialService {
	return &CredentialService{
		logger: logger,
		users:  users,
		cost:   bcrypt.DefaultCost,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// timingHash devuelve un hash bcrypt descartable para que "usuario no existe"
// cueste lo mismo que "password incorrecto".
func timingHash() []byte {
	dummyHashOnce.Do(func() {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		dummyHash, _ = bcrypt.GenerateFromPassword(buf[:MinPasswordLen*2], bcrypt.DefaultCost)
	})
	return dummyHash
}

// Verify devuelve ErrInvalidCredentials tanto si el usuario no existe como si
// el password no coincide. Cualquier otro error es del store.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("credential service not configured")
	}
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(timingHash(), []byte(password))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(timingHash(), []byte(password))
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser registra un usuario nuevo con su password hasheado.
func (s *CredentialService) CreateUser(ctx context.Context, username, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("credential service not configured")
	}
	if _, errs := (domain.LoginForm{Username: username, Password: password}).Validate(); len(errs) > 0 {
		return domain.User{}, fmt.Errorf("%s: %s", errs[0].Field, errs[0].Message)
	}
	if len(password) < MinPasswordLen {
		return domain.User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}

	if s.logger != nil {
		s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("username", username))
	}
	return user, nil
}
