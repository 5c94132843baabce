package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"login-session/internal/config"
	"login-session/internal/db"
	"login-session/internal/repository"
	"login-session/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// create_user registra un usuario con password bcrypt. Uso:
//
//	go run ./cmd/create_user -username alice -password-env ALICE_PASSWORD
func main() {
	username := flag.String("username", "", "username to create")
	passwordEnv := flag.String("password-env", "NEW_USER_PASSWORD", "environment variable holding the password")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	password := os.Getenv(*passwordEnv)
	if *username == "" || password == "" {
		logger.Fatal("username and password are required",
			zap.String("username", *username),
			zap.String("password_env", *passwordEnv),
		)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	svc := service.NewCredentialService(logger, repository.NewPgUserRepository(pool))
	user, err := svc.CreateUser(ctx, *username, password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logger.Fatal("user already exists", zap.String("username", *username))
		}
		logger.Fatal("create user", zap.Error(err))
	}
	logger.Info("done", zap.String("user_id", user.ID))
}
