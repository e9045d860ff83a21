// Package commands holds the hipindex CLI's cobra subcommands.
package commands

import (
	"github.com/houdini-kb/hipindex/internal/cache"
	"github.com/houdini-kb/hipindex/internal/config"
	"github.com/houdini-kb/hipindex/internal/store"
)

// openEnv resolves configuration and opens the cache manager and store
// shared by the ingest and cache subcommands.
func openEnv() (config.Config, *cache.Manager, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, err
	}

	mgr := cache.NewManager(cache.Options{
		Dir:       cfg.CacheDir,
		MaxBytes:  cfg.CacheMaxBytes,
		UserAgent: cfg.UserAgent,
		S3Endpoint: cache.S3Endpoint{
			URL:            cfg.S3Endpoint,
			ForcePathStyle: cfg.S3ForcePathStyle,
		},
	})

	st, err := store.Open(cfg.StorePath, cfg.AggregateCacheTTL)
	if err != nil {
		return cfg, nil, nil, err
	}

	return cfg, mgr, st, nil
}

// openStore resolves configuration and opens only the store, for
// subcommands that never touch the cache.
func openStore() (config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}

	st, err := store.Open(cfg.StorePath, cfg.AggregateCacheTTL)
	if err != nil {
		return cfg, nil, err
	}

	return cfg, st, nil
}
