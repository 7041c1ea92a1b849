package cmd

import (
	"context"
	"fmt"

	"shared-save/core/config"
	"shared-save/core/database"
	"shared-save/core/ledger"
	"shared-save/core/logger"
	"shared-save/core/notify"
	"shared-save/core/remote"
	"shared-save/core/storage"
	"shared-save/feature/worldsync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime wires the shared store for a single command invocation.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	ledger   *ledger.Ledger
	client   storage.Client
	store    *remote.ObjectStore
	notifier notify.Notifier
	sync     *worldsync.Service
}

// loadSettings loads configuration, applies the command line overrides and builds the logger.
func loadSettings() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if worldFlag != "" {
		cfg.Sync.WorldID = worldFlag
	}
	if dirFlag != "" {
		cfg.Sync.WorldDir = dirFlag
	}
	if authorFlag != "" {
		cfg.Sync.Author = authorFlag
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg, nil
}

// openRuntime connects the ledger database and object storage. Notifications are optional:
// when Redis is configured but unreachable the runtime continues without them.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, logg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logg, notifier: notify.Nop{}}

	rt.db, err = database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}
	rt.ledger = ledger.New(rt.db)
	if err := rt.ledger.Migrate(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	rt.client, err = storage.NewClient(cfg.Storage)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	created, err := storage.EnsureBucket(ctx, rt.client, cfg.Storage.Bucket, cfg.Storage.Region)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if created {
		logg.Info("Created snapshot bucket", zap.String("bucket", cfg.Storage.Bucket))
	}
	rt.store = remote.NewObjectStore(rt.client, cfg.Storage.Bucket, cfg.Storage.Prefix, rt.ledger, logg)

	if n, err := notify.New(ctx, cfg.Notify, logg); err != nil {
		logg.Warn("Change notifications disabled", zap.Error(err))
	} else {
		rt.notifier = n
	}

	state := worldsync.NewStateStore(cfg.Sync.StateDir)
	rt.sync = worldsync.NewService(rt.store, rt.notifier, state, cfg.Sync, logg)
	return rt, nil
}

// Close releases every connection held by the runtime.
func (rt *runtime) Close() {
	if rt.notifier != nil {
		if err := rt.notifier.Close(); err != nil {
			rt.logger.Warn("Failed to close notifier", zap.Error(err))
		}
	}
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = rt.logger.Sync()
}
