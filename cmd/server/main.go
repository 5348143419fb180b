package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nomis52/activities/clients/activityclient"
	"github.com/nomis52/activities/config"
	"github.com/nomis52/activities/logging"
	"github.com/nomis52/activities/metrics"
	"github.com/nomis52/activities/registry"
	"github.com/nomis52/activities/server"
)

type Args struct {
	ConfigPath string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := parseArgs()

	if args.ConfigPath == "" {
		return fmt.Errorf("config flag (-c or --config) is required")
	}

	cfg, err := config.LoadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Logger())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	recorder := logging.NewRecorder(cfg.Server.LogBuffer, slog.LevelWarn)

	client, err := activityclient.New(cfg.API.BaseURL,
		activityclient.WithToken(cfg.API.Token),
		activityclient.WithTimeout(cfg.API.Timeout),
		activityclient.WithLogger(recorder.Logger(logger.Logger, "client")),
	)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	scrape, err := metrics.NewScrapeRegistry()
	if err != nil {
		return fmt.Errorf("failed to create metrics registry: %w", err)
	}
	m, err := registry.NewMetrics(scrape)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	reg := registry.New(client,
		registry.WithLogger(recorder.Logger(logger.Logger, "registry")),
		registry.WithMetrics(m),
	)

	srv, err := server.New(cfg, reg,
		server.WithLogger(logger.Logger),
		server.WithRecorder(recorder),
		server.WithScrapeRegistry(scrape),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		srv.Logger().Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	return srv.Run(ctx)
}

func parseArgs() Args {
	configPath := flag.String("config", "", "Path to config file")
	configPathShort := flag.String("c", "", "Path to config file (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nActivities Server - live view of the activities collection\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --config /etc/activities/config.yaml\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -c config.yaml\n", os.Args[0])
	}

	flag.Parse()

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}

	return Args{
		ConfigPath: path,
	}
}
