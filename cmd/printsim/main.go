package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/orrn/printsim/internal/config"
	"github.com/orrn/printsim/internal/core"
	"github.com/orrn/printsim/internal/logging"
	"github.com/orrn/printsim/internal/metrics"
	"github.com/orrn/printsim/internal/shell"
	"github.com/orrn/printsim/internal/store"
)

var version = "0.0.0"
var commit = "HEAD"

func main() {
	var (
		configPath  string
		dataDir     string
		speed       float64
		restore     bool
		showVersion bool
	)

	flag.Usage = func() {
		f := flag.CommandLine.Output()
		_, _ = fmt.Fprintf(f, "Usage: %s [options]\n", os.Args[0])
		_, _ = fmt.Fprintf(f, "Version: %s (%s)\n", version, commit)
		_, _ = fmt.Fprintln(f, "Options:")
		flag.PrintDefaults()
	}

	flag.StringVar(&configPath, "config", "printsim.yaml", "Path to the YAML config file, defaults are used if it does not exist")
	flag.StringVar(&dataDir, "data", "", "Directory for waiting.csv, running.csv and done.csv (overrides config)")
	flag.Float64Var(&speed, "speed", 0, "Printing speed in seconds per page (overrides config)")
	flag.BoolVar(&restore, "restore", false, "Reload the persisted queue state at startup")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("printsim %s (%s)\n", version, commit)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	cfg.ApplyEnv()

	if dataDir != "" {
		cfg.Storage.Dir = dataDir
	}
	if speed != 0 {
		cfg.Printer.SecondsPerPage = speed
	}
	if restore {
		cfg.Storage.Restore = true
	}

	if err := cfg.Validate(); err != nil {
		fail("Invalid config: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	fs, err := store.NewFileStore(store.Config{
		Dir:         cfg.Storage.Dir,
		WaitingFile: cfg.Storage.WaitingFile,
		RunningFile: cfg.Storage.RunningFile,
		DoneFile:    cfg.Storage.DoneFile,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open data directory")
	}

	sim := core.NewSimulator(fs,
		core.WithSpeed(cfg.Printer.SecondsPerPage),
		core.WithLogger(logger.With().Str("component", "simulator").Logger()),
	)

	if cfg.Storage.Restore {
		snap, err := fs.Load()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load persisted state")
		}
		if err := sim.Restore(snap); err != nil {
			logger.Fatal().Err(err).Msg("failed to restore persisted state")
		}
	}

	// write the current state so all three files exist from the start
	if err := sim.SaveAll(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write initial state")
	}

	var collector *metrics.Collector
	if cfg.Metrics.Textfile != "" {
		collector = metrics.NewCollector()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// a second interrupt kills the process even while waiting for input
		<-ctx.Done()
		stop()
	}()

	sh := shell.New(sim, os.Stdin, os.Stdout, shell.Options{
		Logger:          logger,
		Metrics:         collector,
		MetricsTextfile: cfg.Metrics.Textfile,
		Seed:            cfg.Generator.Seed,
	})

	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("shell stopped")
		os.Exit(1)
	}
}

func fail(msg string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "ERROR: "+msg+"\n", args...)
	flag.Usage()
	os.Exit(2)
}
