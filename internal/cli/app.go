// Package cli wires gregify's commands to the engine, the backend and the
// usage log.
package cli

import (
	"context"
	"fmt"

	"github.com/bnema/gregify/internal/app/session"
	"github.com/bnema/gregify/internal/application/usecase"
	"github.com/bnema/gregify/internal/cli/styles"
	"github.com/bnema/gregify/internal/domain/build"
	"github.com/bnema/gregify/internal/infrastructure/backend"
	"github.com/bnema/gregify/internal/infrastructure/config"
	"github.com/bnema/gregify/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/gregify/internal/logging"
)

// App holds CLI dependencies.
type App struct {
	Config    *config.Config
	Manager   *config.Manager
	Theme     *styles.Theme
	BuildInfo build.Info

	// Usage log, opened on first record or query.
	db      *sqlite.LazyDB
	UsageUC *usecase.RecordUsageUseCase

	Backend *backend.Client

	// Context with logger
	ctx context.Context
}

// NewApp loads configuration and creates the CLI dependencies. Nothing is
// opened or dialled until a command needs it.
func NewApp() (*App, error) {
	mgr, cfg := loadConfig()

	logger := logging.NewFromConfigValues(cfg.Logging.Level, cfg.Logging.Format)
	ctx := logging.WithContext(context.Background(), logger)

	dbFile := cfg.Database.Path
	if dbFile == "" {
		var err error
		if dbFile, err = config.GetDatabaseFile(); err != nil {
			return nil, fmt.Errorf("locate usage database: %w", err)
		}
	}
	db := sqlite.NewLazyDB(dbFile)
	usageUC := usecase.NewRecordUsageUseCase(sqlite.NewLazyUsageRepository(db))

	client := backend.New(backend.Options{
		BaseURL:    cfg.Backend.BaseURL,
		Model:      cfg.Backend.Model,
		Role:       cfg.Backend.Role,
		APIKey:     cfg.Backend.APIKey,
		Timeout:    cfg.Backend.Timeout(),
		MaxRetries: cfg.Backend.MaxRetries,
	})

	logger.Debug().
		Str("db_path", dbFile).
		Str("backend", cfg.Backend.BaseURL).
		Msg("cli initialized")

	return &App{
		Config:  cfg,
		Manager: mgr,
		Theme:   styles.NewTheme(),
		db:      db,
		UsageUC: usageUC,
		Backend: client,
		ctx:     ctx,
	}, nil
}

// Close releases all resources.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// NewSession starts a session backed by the prompt service and the usage log.
func (a *App) NewSession(ctx context.Context, cfg *config.Config) *session.Session {
	if cfg == nil {
		cfg = a.Config
	}
	return session.New(ctx, session.Options{
		Config:   cfg,
		Provider: a.Backend,
		Usage:    a.UsageUC,
	})
}

// loadConfig loads configuration from standard locations. A manager that
// cannot load falls back to the defaults and is returned as nil.
func loadConfig() (*config.Manager, *config.Config) {
	log := logging.NewFromEnv()

	mgr, err := config.NewManager()
	if err != nil {
		log.Warn().Err(err).Msg("config unavailable, using defaults")
		return nil, config.DefaultConfig()
	}
	if err := mgr.Load(); err != nil {
		log.Warn().Err(err).Msg("config invalid, using defaults")
		return nil, config.DefaultConfig()
	}
	return mgr, mgr.Get()
}
