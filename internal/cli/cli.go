// Package cli provides the command-line interface for the no-cache server.
// It wires the optional YAML configuration, the diagnostic logger and the
// server lifecycle together.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/nocache-dev/nocache-server/internal/config"
	"github.com/nocache-dev/nocache-server/internal/server"
)

// NewApp creates and configures the main CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "nocache-server",
		Usage:   "Serve the current directory over HTTP with browser caching disabled",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				Usage:   "path to optional YAML configuration file",
				EnvVars: []string{"NOCACHE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level for structured diagnostics on stderr (debug, info, warn, error)",
				EnvVars: []string{"NOCACHE_LOG_LEVEL"},
			},
		},
		Action: serveCommand,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  fmt.Sprintf("Serve the working directory on http://%s:%d/", server.DefaultBindAddress, server.DefaultPort),
				Action: serveCommand,
			},
			{
				Name:  "config",
				Usage: "Manage the optional configuration file",
				Subcommands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Write the default configuration to a file",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "out",
								Value: config.DefaultPath,
								Usage: "output path for the configuration file",
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "overwrite an existing file",
							},
						},
						Action: configInitCommand,
					},
					{
						Name:   "validate",
						Usage:  "Load and validate the configuration file",
						Action: configValidateCommand,
					},
				},
			},
		},
	}
}

// loadConfig reads the configuration named by --config. A missing file is only
// an error when the path was given explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !c.IsSet("config") {
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// resolveLogLevel lets an explicit --log-level win over the config file.
func resolveLogLevel(c *cli.Context, cfg *config.Config) slog.Level {
	if c.IsSet("log-level") {
		return ParseLogLevelOrDefault(strings.ToLower(c.String("log-level")))
	}
	return ParseLogLevelOrDefault(cfg.LogLevel())
}

// serveCommand implements the serve command and the default action.
func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := NewLogger(c.App.ErrWriter, resolveLogLevel(c, cfg))

	root, err := os.Getwd()
	if err != nil {
		logger.Error("failed to resolve working directory", "error", err)
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	if err := server.RegisterMIMETypes(cfg.MIMETypes); err != nil {
		logger.Error("failed to register mime types", "error", err)
		return err
	}
	logger.Debug("configuration loaded",
		"config", c.String("config"),
		"mime_types", len(cfg.MIMETypes))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(root, c.App.Writer, logger)
	if err := srv.Start(ctx, server.DefaultPort, server.DefaultBindAddress); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// configInitCommand implements the config init command.
func configInitCommand(c *cli.Context) error {
	out := c.String("out")

	if !c.Bool("force") {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", out)
		}
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := config.SaveConfig(config.DefaultConfig(), out); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote default configuration to %s\n", out)
	return nil
}

// configValidateCommand implements the config validate command.
func configValidateCommand(c *cli.Context) error {
	path := c.String("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "configuration %s is valid (version %s, log level %s, %d mime types)\n",
		path, cfg.Version, cfg.LogLevel(), len(cfg.MIMETypes))
	return nil
}
