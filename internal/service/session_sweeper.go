package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionSweeper borra periodicamente las sesiones vencidas. La expiracion
// ya se aplica en lectura; esto solo recupera espacio.
type SessionSweeper struct {
	logger   *zap.Logger
	store    *SessionStore
	interval time.Duration
}

func NewSessionSweeper(logger *zap.Logger, store *SessionStore, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionSweeper{
		logger:   logger,
		store:    store,
		interval: interval,
	}
}

// Run bloquea hasta que ctx se cancela.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *SessionSweeper) sweepOnce(ctx context.Context) int64 {
	n, err := s.store.PurgeExpired(ctx)
	if err != nil {
		s.logger.Warn("session sweep failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", zap.Int64("count", n))
	}
	return n
}
