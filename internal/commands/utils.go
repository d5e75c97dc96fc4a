package commands

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rentctl/internal/auth"
	"rentctl/internal/config"
	"rentctl/internal/database"
	"rentctl/internal/profile"
	"rentctl/internal/rental"
	"rentctl/internal/shell"
)

// runtime is what every command needs once configuration is loaded.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func getDB() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger, db: db}, nil
}

func (r *runtime) close() {
	if err := database.Close(r.db); err != nil {
		r.logger.Warn("closing database", zap.Error(err))
	}
	_ = r.logger.Sync()
}

func (r *runtime) services() shell.Services {
	profiles := profile.NewService(r.db, r.logger)
	return shell.Services{
		Auth:     auth.NewService(r.db, auth.Hasher{Cost: r.cfg.BcryptCost}, r.logger),
		Profiles: profiles,
		Rentals:  rental.NewService(r.db, profiles, r.logger),
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development() {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = level
	zcfg.OutputPaths = []string{cfg.LogOutput}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
