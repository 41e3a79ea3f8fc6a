// Package main provides the CLI entry point for vidreview.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidreview/pkg/adapters/ffmpegbin"
	"github.com/user/vidreview/pkg/adapters/logger"
	"github.com/user/vidreview/pkg/config"
	"github.com/user/vidreview/pkg/ports"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "vidreview",
		Usage:   l10n.T("Review tracked sports video: overlays, clips and exports"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   l10n.T("YAML configuration file"),
				EnvVars: []string{"VIDREVIEW_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   l10n.T("Log level (debug, info, warn, error)"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   l10n.T("Suppress all log output"),
			},
			&cli.StringFlag{
				Name:  "ffmpeg",
				Usage: l10n.T("Path to the ffmpeg executable"),
			},
		},
		Commands: []*cli.Command{
			clipCommand(),
			renderCommand(),
			exportCommand(),
			probeCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("vidreview version %s", version))
					return nil
				},
			},
		},
	}
}

// env is the configuration shared by every command.
type env struct {
	cfg config.Config
	log ports.Logger
}

// setup loads the config file, applies global flag overrides and builds
// the logger.
func setup(c *cli.Context) (*env, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if cfg.FFmpegPath != "" {
		ffmpegbin.SetPath(cfg.FFmpegPath)
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(cfg.Level())
	}
	return &env{cfg: cfg, log: log}, nil
}
