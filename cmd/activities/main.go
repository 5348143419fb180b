package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nomis52/activities/buildinfo"
	"github.com/nomis52/activities/clients/activityclient"
	"github.com/nomis52/activities/config"
	"github.com/nomis52/activities/logging"
	"github.com/nomis52/activities/metrics"
	"github.com/nomis52/activities/registry"
)

type Args struct {
	ConfigPath  string
	ShowVersion bool
	Validate    bool
	Command     string
	CommandArgs []string
}

// errUsage reports a command line mistake; usage has already been printed.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	args, err := parseArgs(argv, stderr)
	if err != nil {
		return err
	}

	if args.ShowVersion {
		showVersion(stdout)
		return nil
	}

	if args.ConfigPath == "" {
		return fmt.Errorf("config flag (-c or --config) is required")
	}

	cfg, err := config.LoadConfig(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if args.Validate {
		fmt.Fprintf(stdout, "Configuration validation successful: %s\n", args.ConfigPath)
		return nil
	}

	cmd, ok := commands[args.Command]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args.Command)
		printUsage(stderr)
		return errUsage
	}

	logger, err := logging.New(cfg.Logging.Logger())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	client, err := activityclient.New(cfg.API.BaseURL,
		activityclient.WithToken(cfg.API.Token),
		activityclient.WithTimeout(cfg.API.Timeout),
		activityclient.WithLogger(logger.Logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	opts := []registry.Option{registry.WithLogger(logger.Logger)}

	var push *metrics.PushRegistry
	if cfg.Monitoring.PushURL != "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to get hostname: %w", err)
		}
		push = metrics.NewPushRegistry(metrics.PushConfig{
			URL:      cfg.Monitoring.PushURL,
			Prefix:   cfg.Monitoring.MetricsPrefix,
			Job:      cfg.Monitoring.JobName,
			Instance: hostname,
		})
		m, err := registry.NewMetrics(push)
		if err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
		opts = append(opts, registry.WithMetrics(m))
	}

	reg := registry.New(client, opts...)
	cmdErr := cmd.run(ctx, reg, args.CommandArgs, stdout, stderr)

	if push != nil {
		// Push even when the command failed so the failure is counted.
		if err := push.Flush(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to push metrics", "error", err)
		}
	}
	return cmdErr
}

func showVersion(w io.Writer) {
	props := buildinfo.Get()
	fmt.Fprintf(w, "activities %s\n", props.Version)
	fmt.Fprintf(w, "Built: %s\n", props.BuildTime)
	fmt.Fprintf(w, "Commit: %s\n", props.GitCommit)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: activities [options] <command> [arguments]\n")
	fmt.Fprintf(w, "\nManage activities through the activities API\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range commandNames() {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  activities -c config.yaml list\n")
	fmt.Fprintf(w, "  activities -c config.yaml create -title Museum -date 2024-05-01T10:00:00\n")
	fmt.Fprintf(w, "  activities -c config.yaml delete 3f1c2a9e\n")
	fmt.Fprintf(w, "  activities --version\n")
}

func parseArgs(argv []string, stderr io.Writer) (Args, error) {
	fs := flag.NewFlagSet("activities", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "Path to config file")
	configPathShort := fs.String("c", "", "Path to config file (shorthand)")
	showVersion := fs.Bool("version", false, "Show version information")
	versionShort := fs.Bool("v", false, "Show version information (shorthand)")
	validate := fs.Bool("validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printUsage(stderr)
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	// The flag package has already printed the problem and usage.
	if err := fs.Parse(argv); err != nil {
		return Args{}, errUsage
	}

	path := *configPath
	if path == "" && *configPathShort != "" {
		path = *configPathShort
	}

	args := Args{
		ConfigPath:  path,
		ShowVersion: *showVersion || *versionShort,
		Validate:    *validate,
	}
	if rest := fs.Args(); len(rest) > 0 {
		args.Command = rest[0]
		args.CommandArgs = rest[1:]
	}
	return args, nil
}
