package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/contestkit/arena/internal/api/handlers"
	"github.com/contestkit/arena/internal/auth"
	"github.com/contestkit/arena/internal/bucket"
	"github.com/contestkit/arena/internal/config"
	"github.com/contestkit/arena/internal/contest"
	"github.com/contestkit/arena/internal/events"
	"github.com/contestkit/arena/internal/storage/local"
	"github.com/contestkit/arena/internal/storage/memory"
	"github.com/contestkit/arena/internal/storage/postgres"
	"github.com/contestkit/arena/internal/storage/sqlite"
)

// App holds all application dependencies
type App struct {
	Config   *config.Config
	Service  *contest.Service
	Verifier auth.Verifier

	// Stats and History are nil for the memory backend, which keeps no
	// submission history
	Stats   handlers.StatsProvider
	History handlers.HistoryProvider

	// DB is nil when the memory backend is selected; /ready skips the
	// database check then.
	DB *sql.DB

	eventsConn *events.Connection
}

// NewApp creates a new application instance with all dependencies wired
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg}

	// Contest manifest and registry
	manifest, err := contest.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("load contest manifest: %w", err)
	}
	registry := contest.NewRegistry(manifest)

	// Artifact source: a local directory or object storage, both behind
	// the resilience wrapper
	var backend bucket.Storage
	if cfg.ArtifactsDir != "" {
		store, err := local.NewStore(cfg.ArtifactsDir)
		if err != nil {
			return nil, err
		}
		backend = store
	} else {
		client, err := bucket.New(bucket.Config{
			Endpoint:  cfg.BucketEndpoint,
			AccessKey: cfg.BucketAccessKey,
			SecretKey: cfg.BucketSecretKey,
			Bucket:    cfg.BucketName,
			UseSSL:    cfg.BucketUseSSL,
		})
		if err != nil {
			return nil, err
		}
		backend = client
	}
	resilientCfg := bucket.DefaultResilientConfig()
	resilientCfg.Logger = logger
	storage := bucket.NewResilient(backend, resilientCfg)

	// Progress store
	progress, err := app.initProgressStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Event publishing is optional; submissions grade fine without a broker
	var publisher contest.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := events.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			return nil, fmt.Errorf("connect event broker: %w", err)
		}
		app.eventsConn = conn
		publisher = events.NewPublisher(conn, logger)
	}

	// Token verification
	switch {
	case cfg.TokensPath != "":
		verifier, err := auth.LoadStaticVerifier(cfg.TokensPath)
		if err != nil {
			return nil, fmt.Errorf("load tokens: %w", err)
		}
		app.Verifier = verifier
	case cfg.Debug:
		logger.Warn("no tokens file configured, accepting any token (debug mode)")
		app.Verifier = auth.InsecureVerifier{}
	default:
		return nil, fmt.Errorf("TOKENS_PATH must be set in production")
	}

	app.Service = contest.NewService(registry, storage, storage, progress, publisher, logger)
	return app, nil
}

func (a *App) initProgressStore(ctx context.Context, cfg *config.Config) (contest.ProgressStore, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		a.DB = db.DB
		a.Stats = sqlite.NewStatsStore(db)
		store := sqlite.NewProgressStore(db)
		a.History = store
		return store, nil

	case "postgres":
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		a.DB = db.DB
		a.Stats = postgres.NewStatsStore(db)
		store := postgres.NewProgressStore(db)
		a.History = store
		return store, nil

	case "memory":
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	if a.eventsConn != nil {
		a.eventsConn.Close()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
