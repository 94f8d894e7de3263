package main

import (
	"log/slog"

	"github.com/helixml/vodcast"
	"github.com/helixml/vodcast/internal/config"
)

// clientOptions returns the vodcast.Option slice derived from AppConfig.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []vodcast.Option {
	opts := []vodcast.Option{
		vodcast.WithVODDir(cfg.VODDir()),
		vodcast.WithStreamConfig(cfg.Stream()),
		vodcast.WithOwncastConfig(cfg.Owncast()),
		vodcast.WithLogger(logger),
	}

	if keys := cfg.APIKeys(); len(keys) > 0 {
		opts = append(opts, vodcast.WithAPIKeys(keys...))
	}

	return opts
}
