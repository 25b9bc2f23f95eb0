package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/internal/config"
	"github.com/cinegraph/cinegraph/internal/errortypes"
)

var (
	configPath string
	transport  string
	httpAddr   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cinegraph",
		Short: "MCP server for a Neo4j movies graph",
		Long: `Cinegraph exposes a Neo4j movies database over the Model Context Protocol.
It provides tools for graph statistics, genre browsing with pagination, and
title search, plus a movie details resource and a discovery prompt.`,
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	serveCmd.Flags().StringVar(&configPath, "config", config.DefaultConfigFilename, "path to the config file")
	serveCmd.Flags().StringVar(&transport, "transport", "", "transport to serve on: stdio or http (overrides config)")
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "listen address for the http transport (overrides config)")

	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := config.LoadConfigWithPath(configPath)
	if err != nil {
		errortypes.LogError(nil, err)
		return err
	}
	if transport != "" {
		cfg.Server.Transport = transport
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}

	logger := setupLogging(cfg)
	logger.Info("Cinegraph MCP server starting",
		"transport", cfg.Server.Transport, "database", cfg.Neo4j.Database)

	ctx := context.Background()
	srv, err := cinegraph.NewServer(ctx, cinegraph.Options{Config: cfg, Logger: logger})
	if err != nil {
		errortypes.LogError(logger, err)
		return err
	}

	setupSignalHandler(srv, logger)

	if err := srv.Start(); err != nil {
		errortypes.LogError(logger, err)
		return err
	}
	return nil
}

// setupLogging builds the process logger from the config and installs it as
// the slog default. Logs always go to stderr so the stdio transport keeps
// stdout clean for the protocol.
func setupLogging(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupSignalHandler closes the Neo4j driver on SIGINT/SIGTERM before exit.
func setupSignalHandler(srv *cinegraph.Server, logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-c
		logger.Info("Received shutdown signal, terminating gracefully", "signal", fmt.Sprint(sig))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Close errors are logged but do not change the exit code.
		if err := srv.Stop(ctx); err != nil {
			errortypes.LogError(logger, err)
		}

		logger.Info("Shutdown complete")
		os.Exit(0)
	}()
}
