package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"login-session/internal/config"
	"login-session/internal/db"
	apihttp "login-session/internal/http"
	"login-session/internal/repository"
	"login-session/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	gin.SetMode(cfg.GinMode)

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisClient.Ping(ctxPing).Err()
		cancel()
		if err != nil {
			if cfg.SessionBackend == config.SessionBackendRedis {
				logger.Fatal("redis ping failed", zap.Error(err))
			}
			logger.Warn("redis ping failed, using in-memory login limiter", zap.Error(err))
			redisClient = nil
		}
	}

	var sessionRepo repository.SessionRepository
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		sessionRepo = repository.NewRedisSessionRepository(redisClient)
	case config.SessionBackendMemory:
		logger.Warn("using in-memory session backend, sessions are lost on restart")
		sessionRepo = repository.NewMemorySessionRepository()
	default:
		sessionRepo = repository.NewPgSessionRepository(pool)
	}

	var limiter service.LoginRateLimiter
	if redisClient != nil {
		limiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow, cfg.LoginRateMax)
	} else {
		limiter = service.NewMemoryLoginRateLimiter(cfg.LoginRateWindow, cfg.LoginRateMax)
	}

	codec, err := service.NewCookieCodec(service.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secret: []byte(cfg.SessionSecret),
		Secure: cfg.SessionCookieSecure,
	})
	if err != nil {
		logger.Fatal("cookie codec", zap.Error(err))
	}
	if !cfg.SessionCookieSecure {
		logger.Warn("session cookie Secure attribute disabled")
	}

	userRepo := repository.NewPgUserRepository(pool)
	credentialSvc := service.NewCredentialService(logger, userRepo)
	sessionStore := service.NewSessionStore(sessionRepo)
	loginSvc := service.NewLoginService(logger, credentialSvc, sessionStore, codec, service.LoginConfig{
		SessionExpiration: cfg.SessionExpiration,
	})

	if cfg.SessionBackend != config.SessionBackendRedis {
		sweeper := service.NewSessionSweeper(logger, sessionStore, cfg.SessionSweepEvery)
		go sweeper.Run(ctx)
	}

	authHandler := apihttp.NewAuthHandler(logger, loginSvc, limiter, apihttp.LocalRedirect{Home: cfg.HomePath})
	sessionMW := apihttp.NewSessionMiddleware(logger, service.NewSessionResolver(codec, sessionStore), cfg.HomePath)
	router := apihttp.NewRouter(logger, apihttp.RouterConfig{AllowedOrigins: cfg.CORSAllowedOrigins}, authHandler, sessionMW)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("port", cfg.HTTPPort),
			zap.String("session_backend", cfg.SessionBackend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
