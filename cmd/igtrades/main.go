package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/igtrades/internal/config"
	"github.com/rickgao/igtrades/internal/database"
	"github.com/rickgao/igtrades/internal/pipeline"
	"github.com/rickgao/igtrades/internal/scheduler"
	"github.com/rickgao/igtrades/internal/version"
	"github.com/rickgao/igtrades/internal/writer"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file (optional; environment variables also work)")
	envFile := flag.String("env-file", "", "load environment variables from this .env file first")
	fromDate := flag.String("from-date", "", "start date in YYYY-MM-DD format (default: yesterday)")
	toDate := flag.String("to-date", "", "end date in YYYY-MM-DD format (default: today)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("igtrades", version.String())
		return 0
	}

	if *envFile != "" {
		found, err := config.LoadDotEnv(*envFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if found {
			fmt.Printf("Loaded environment variables from %s\n", *envFile)
		} else {
			fmt.Printf("No .env file found at %s\n", *envFile)
		}
	}

	from, err := config.ParseDate(*fromDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -from-date: %v\n", err)
		return 1
	}
	to, err := config.ParseDate(*toDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -to-date: %v\n", err)
		return 1
	}

	// Load configuration
	cfg, err := config.Resolve(*configPath)
	if err != nil {
		printConfigError(err)
		return 1
	}

	// Set up structured logging
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting igtrades", version.LogAttrs()...)
	logger.Info("configuration loaded",
		"config", *configPath,
		"api_url", cfg.API.BaseURL,
		"ledger", cfg.Ledger.Path,
		"schedule", cfg.Schedule.Cron,
		"mirror", cfg.Mirror.Enabled,
	)

	if cfg.Schedule.Cron != "" {
		if _, err := scheduler.ParseSchedule(cfg.Schedule.Cron); err != nil {
			logger.Error("invalid schedule", "error", err)
			return 1
		}
	}

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	if cfg.Mirror.Enabled {
		db := cfg.Mirror.Database
		logger.Info("connecting to mirror database",
			"host", db.Host,
			"port", db.Port,
			"database", db.Name,
		)

		pool, err := database.Connect(ctx, db)
		if err != nil {
			logger.Error("failed to connect to mirror database", "error", err)
			return 1
		}
		defer pool.Close()

		mirror := writer.NewLedgerMirror(pool, logger.With("component", "mirror"))
		if err := mirror.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare mirror table", "error", err)
			return 1
		}
		opts = append(opts, pipeline.WithMirror(mirror))
		logger.Info("mirror database connected", "table", writer.DefaultTable)
	}

	client := pipeline.NewAPIClient(cfg.API, logger)
	p, err := pipeline.New(cfg, client, opts...)
	if err != nil {
		logger.Error("failed to create pipeline", "error", err)
		return 1
	}

	if cfg.Schedule.Cron == "" {
		if _, err := p.Run(ctx, from, to); err != nil {
			logger.Error("run failed", "error", err)
			return 1
		}
		return 0
	}

	// Scheduled runs always use the default window relative to each tick.
	if !from.IsZero() || !to.IsZero() {
		logger.Warn("ignoring -from-date/-to-date in scheduled mode")
	}

	sched, err := scheduler.New(cfg.Schedule.Cron, func(ctx context.Context) error {
		_, err := p.Run(ctx, time.Time{}, time.Time{})
		return err
	}, logger.With("component", "scheduler"))
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		return 1
	}

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler failed", "error", err)
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}

// printConfigError prints config problems in a form a user can act on.
func printConfigError(err error) {
	var cfgErr *config.ConfigError
	if !errors.As(err, &cfgErr) {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return
	}

	if vars := cfgErr.EnvVars(); len(vars) > 0 {
		fmt.Fprintln(os.Stderr, "Error: Missing required environment variables:")
		for _, v := range vars {
			fmt.Fprintf(os.Stderr, "  - %s\n", v)
		}
		fmt.Fprintln(os.Stderr, "\nSet them in the environment, in a config file, or load a .env file with -env-file.")
	}
	for _, f := range cfgErr.Fields {
		if _, ok := config.EnvVarFor(f); !ok {
			fmt.Fprintf(os.Stderr, "Error: missing %s\n", f)
		}
	}
	for _, p := range cfgErr.Problems {
		fmt.Fprintf(os.Stderr, "Error: %s\n", p)
	}
}
