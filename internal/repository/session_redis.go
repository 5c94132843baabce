package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"login-session/internal/domain"
)

// redisSessionClient es el subconjunto de *redis.Client que usa el repositorio.
type redisSessionClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisSessionRepository guarda cada sesion como JSON bajo "auth:session:<id>".
// Las sesiones con expiracion usan el TTL de Redis; las de navegador no tienen TTL.
type RedisSessionRepository struct {
	client redisSessionClient
	prefix string
	now    func() time.Time
}

func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
		prefix: "auth:session:",
		now:    time.Now,
	}
}

type redisSessionRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (r *RedisSessionRepository) key(id string) string {
	return r.prefix + id
}

func (r *RedisSessionRepository) Insert(ctx context.Context, session domain.Session) error {
	if session.ID == "" || session.UserID == "" {
		return errors.New("session: missing id or user_id")
	}

	var ttl time.Duration
	if session.ExpiresAt != nil {
		ttl = session.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return errors.New("session: expires_at must be in the future")
		}
	}

	data, err := json.Marshal(redisSessionRecord(session))
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(session.ID), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (r *RedisSessionRepository) GetByID(ctx context.Context, id string) (domain.Session, error) {
	val, err := r.client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}

	var rec redisSessionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return domain.Session{}, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return domain.Session(rec), nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// DeleteExpired no hace nada: Redis ya expira las claves por TTL.
func (r *RedisSessionRepository) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}
