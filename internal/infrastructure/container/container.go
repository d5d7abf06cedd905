// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/application/draft"
	apprecipe "github.com/pastaboard/pastaboard/internal/application/recipe"
	"github.com/pastaboard/pastaboard/internal/domain/recipe"
	"github.com/pastaboard/pastaboard/internal/infrastructure/config"
	"github.com/pastaboard/pastaboard/internal/infrastructure/http/webserver"
	"github.com/pastaboard/pastaboard/internal/infrastructure/monitoring"
	gormrepo "github.com/pastaboard/pastaboard/internal/infrastructure/persistence/gorm"
	"github.com/pastaboard/pastaboard/internal/infrastructure/persistence/jsonl"
	"github.com/pastaboard/pastaboard/internal/infrastructure/persistence/memory"
	redisrepo "github.com/pastaboard/pastaboard/internal/infrastructure/persistence/redis"
	"github.com/pastaboard/pastaboard/internal/infrastructure/persistence/sqlite"
	"github.com/pastaboard/pastaboard/internal/infrastructure/storage/local"
	s3storage "github.com/pastaboard/pastaboard/internal/infrastructure/storage/s3"
	"github.com/pastaboard/pastaboard/internal/ports/inbound"
	"github.com/pastaboard/pastaboard/internal/ports/outbound"
	"github.com/pastaboard/pastaboard/pkg/healthcheck"
	"github.com/pastaboard/pastaboard/pkg/logger"
)

// ConfigPath is the optional configuration file given on the command line
type ConfigPath string

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	StorageModule,
	CacheModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides metrics and health checks
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log)
	},
)

// StorageModule provides photo storage for the configured provider
var StorageModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.ImageStorage, error) {
		switch cfg.Storage.Provider {
		case "s3":
			client, err := s3storage.NewClient(cfg.Storage)
			if err != nil {
				return nil, err
			}
			log.Info("Using S3 image storage",
				zap.String("bucket", cfg.Storage.S3Bucket),
				zap.String("region", cfg.Storage.S3Region),
			)
			return s3storage.NewImageStorage(client, cfg.Storage, log)
		default:
			log.Info("Using local image storage", zap.String("dir", cfg.Storage.UploadDir))
			return local.NewImageStorage(cfg.Storage.UploadDir, webserver.UploadURLPrefix, log)
		}
	},
)

// CacheModule provides the session draft cache
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if cfg.Session.Backend == "redis" {
			client, err := redisrepo.NewClient(context.Background(), cfg.Redis, log)
			if err != nil {
				return nil, err
			}
			cache := redisrepo.NewCacheRepository(client, log)
			lc.Append(fx.Hook{OnStop: func(context.Context) error { return cache.Close() }})
			return cache, nil
		}

		log.Info("Using in-memory draft cache")
		cache := memory.NewCacheRepository()
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cache.Close() }})
		return cache, nil
	},
)

// RepositoryModule provides the record store for the configured driver
var RepositoryModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.EntryRepository, error) {
		var (
			repo outbound.EntryRepository
			err  error
		)

		switch cfg.Database.Driver {
		case "sqlite":
			db, dbErr := sqlite.SetupDatabase(cfg.Database.SQLitePath, sqlite.ParseLogLevel(cfg.Database.LogLevel))
			if dbErr != nil {
				return nil, fmt.Errorf("failed to setup SQLite database: %w", dbErr)
			}
			log.Info("Connected to SQLite record store", zap.String("path", cfg.Database.SQLitePath))
			repo = gormrepo.NewEntryRepository(db)
		default:
			repo, err = jsonl.NewEntryRepository(cfg.Storage.DataFile, log)
			if err != nil {
				return nil, err
			}
			log.Info("Using JSON-lines record store", zap.String("path", cfg.Storage.DataFile))
		}

		lc.Append(fx.Hook{OnStop: func(context.Context) error { return repo.Close() }})
		return repo, nil
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	recipe.DefaultCatalog,

	func(cache outbound.CacheRepository, cfg *config.Config, log *zap.Logger) inbound.DraftService {
		return draft.NewManager(cache, cfg.Session.TTL, log)
	},

	fx.Annotate(
		apprecipe.NewRecipeService,
		fx.As(new(inbound.RecipeService)),
	),
)

// HTTPModule provides the web server
var HTTPModule = fx.Provide(
	webserver.NewWebServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterHealthChecks,
	RegisterLifecycleHooks,
)

// RegisterHealthChecks registers a checker for every backing store
func RegisterHealthChecks(
	cfg *config.Config,
	hc *healthcheck.HealthCheck,
	entries outbound.EntryRepository,
	images outbound.ImageStorage,
	cache outbound.CacheRepository,
) {
	hc.Register("record_store", healthcheck.NewCustomChecker("record_store",
		func(ctx context.Context) (healthcheck.Status, string, interface{}) {
			n, err := entries.Count(ctx)
			if err != nil {
				return healthcheck.StatusUnhealthy, err.Error(), nil
			}
			return healthcheck.StatusHealthy, "Record store readable", map[string]interface{}{
				"driver":  cfg.Database.Driver,
				"entries": n,
			}
		}))

	hc.Register("image_storage", healthcheck.NewPingChecker(images, true, map[string]interface{}{
		"provider": cfg.Storage.Provider,
	}))

	hc.Register("draft_cache", healthcheck.NewPingChecker(cache, cfg.Session.Backend == "redis", map[string]interface{}{
		"backend": cfg.Session.Backend,
	}))
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	server *webserver.WebServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Pastaboard",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("storage", cfg.Storage.Provider),
				zap.String("records", cfg.Database.Driver),
				zap.String("sessions", cfg.Session.Backend),
			)
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Pastaboard")

			shutdownCtx := ctx
			if cfg.Server.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				shutdownCtx, cancel = context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
				defer cancel()
			}

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
