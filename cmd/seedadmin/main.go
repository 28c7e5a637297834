// Command seedadmin creates the administrator account described by the
// SEED_ADMIN_* environment variables. Signup never grants admin rights, so
// this is the only way to bootstrap one.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/barbershop-api/internal/config"
	"github.com/spec-kit/barbershop-api/internal/observability"
	"github.com/spec-kit/barbershop-api/internal/persistence"
	"github.com/spec-kit/barbershop-api/internal/repository"
	"github.com/spec-kit/barbershop-api/internal/service"
	apperrors "github.com/spec-kit/barbershop-api/pkg/util/errorutil"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	seed := cfg.SeedAdmin
	if seed.Username == "" || seed.Email == "" || seed.Password == "" || seed.CPF == "" {
		logger.Fatal("SEED_ADMIN_USERNAME, SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD and SEED_ADMIN_CPF are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.Migrate(ctx, logger, true); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: repository.NewUserRepository(pg.PoolHandle()),
		Logger:   logger,
	})

	user, err := authService.CreateAdmin(ctx, service.RegisterInput{
		Name:      seed.Name,
		Email:     seed.Email,
		Username:  seed.Username,
		Password:  seed.Password,
		Birthdate: seed.Birthdate,
		CPF:       seed.CPF,
	})
	switch {
	case apperrors.IsCode(err, apperrors.CodeConflict):
		logger.Info("admin already exists, skipping", zap.String("username", seed.Username))
	case err != nil:
		logger.Fatal("failed to create admin", zap.Error(err))
	default:
		logger.Info("admin created", zap.String("id", user.ID), zap.String("username", user.Username))
	}
}
