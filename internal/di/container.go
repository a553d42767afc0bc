package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/adapters/httpapi"
	"github.com/mlefebvre/spamguard/internal/auth"
	"github.com/mlefebvre/spamguard/internal/config"
	"github.com/mlefebvre/spamguard/internal/core"
	"github.com/mlefebvre/spamguard/internal/factory"
	"github.com/mlefebvre/spamguard/internal/logging"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewDetectorFactory); err != nil {
		return nil, err
	}

	// Register store
	if err := container.Provide(func(f *factory.StoreFactory) (core.Store, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}

	// Register spam detection service
	if err := container.Provide(func(f *factory.DetectorFactory) *core.SpamService {
		return f.CreateSpamService()
	}); err != nil {
		return nil, err
	}

	// Register JWT manager
	if err := container.Provide(func(cfg *config.Config) (*auth.JWTManager, error) {
		ttl, err := cfg.GetDuration("auth.token_ttl")
		if err != nil {
			return nil, fmt.Errorf("invalid auth token TTL: %w", err)
		}
		return auth.NewJWTManager(cfg.GetString("auth.jwt_secret"), ttl), nil
	}); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(
		cfg *config.Config,
		svc *core.SpamService,
		store core.Store,
		jwt *auth.JWTManager,
		logger *zap.Logger,
	) *httpapi.Server {
		return httpapi.NewServer(cfg.GetServer().ListenAddress, svc, store, jwt, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
