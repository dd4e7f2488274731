package main

import (
	"context"
	"os"

	"github.com/desertthunder/plexlist/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("ignoring invalid config file", "path", defaultConfigPath, "error", err)
		}
	}

	if level, err := shared.ParseLogLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(logger, level)
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Logger:   logger,
		Progress: os.Stderr,
	})

	app := &cli.Command{
		Name:     "plexlist",
		Usage:    "Build Plex playlists from keyword matches in movie and episode summaries",
		Version:  "0.3.0",
		Commands: runner.register(),

		DisableSliceFlagSeparator: true,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
