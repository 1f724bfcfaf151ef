package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/reposcout"
	"github.com/poiesic/reposcout/ai"
	_ "github.com/poiesic/reposcout/ai/mock"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "reposcout",
		Usage: "Semantic and hybrid search over repository metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.yaml (default: user config dir)",
			},
			&cli.StringFlag{
				Name:  "cache-path",
				Usage: "Override the directory holding the index and record store",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Override the embedding backend (" + strings.Join(ai.Backends(), ", ") + ")",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			indexCommand(),
			searchCommand(),
			hybridCommand(),
			statsCommand(),
			removeCommand(),
			rebuildCommand(),
			clearCommand(),
			configCommand(),
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadConfig reads the config file named by --config and applies the
// global overrides.
func loadConfig(c *cli.Context) (*reposcout.Config, string, error) {
	path := c.String("config")
	if path == "" {
		var err error
		path, err = reposcout.DefaultConfigPath()
		if err != nil {
			return nil, "", err
		}
	}
	cfg, err := reposcout.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	if p := c.String("cache-path"); p != "" {
		if cfg.Search.CachePath, err = reposcout.ExpandPath(p); err != nil {
			return nil, "", err
		}
	}
	if b := c.String("backend"); b != "" {
		cfg.AI.Backend = b
	}
	return cfg, path, nil
}

func openScout(c *cli.Context) (*reposcout.Scout, error) {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if c.IsSet("semantic-weight") {
		cfg.Search.SemanticWeight = float32(c.Float64("semantic-weight"))
	}
	return reposcout.Open(context.Background(), cfg,
		reposcout.WithLogger(slog.Default()),
		reposcout.WithProgress(c.App.ErrWriter))
}
