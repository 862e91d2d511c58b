package main

import (
	"fmt"
	"log/slog"

	"paperflow-hq/paperflow/pkg/config"
)

func printBanner(cfg *config.Config) {
	fmt.Printf("Paperflow v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("storage backend", "backend", cfg.Storage.Backend)

	if cfg.Registry.PoliciesDir != "" {
		slog.Debug("policy import", "dir", cfg.Registry.PoliciesDir, "watch", cfg.Registry.Watch)
	}

	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "backend", cfg.Audit.Backend)
	}

	if cfg.Remote.Provider != "" && cfg.Remote.Provider != "none" {
		slog.Debug("remote storage", "provider", cfg.Remote.Provider)
	}
}
