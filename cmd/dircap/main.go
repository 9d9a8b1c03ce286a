package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"dircap/internal/config"
	"dircap/internal/evict"
	"dircap/internal/exitcodes"
	"dircap/internal/history"
	"dircap/internal/logging"
	"dircap/internal/metrics"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("dircap", pflag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dircap --size SIZE [flags] DIRECTORY")
		fmt.Fprintln(os.Stderr, "Delete least-recently-modified files until DIRECTORY fits in SIZE.")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Flags:")
		fmt.Fprint(os.Stderr, flags.FlagUsages())
	}

	sizeStr := flags.StringP("size", "s", "", "size to limit the directory to, e.g. 10MB or 1GiB (required)")
	dryRun := flags.BoolP("dry-run", "d", false, "don't actually delete anything")
	keepParents := flags.BoolP("keep-parents", "k", false, "don't delete parent directories if we empty them")
	verbose := flags.BoolP("verbose", "v", false, "log per-entry walk decisions")
	configPath := flags.String("config", "", "YAML file supplying defaults for unset flags")
	historyPath := flags.String("history", "", "record evictions in a SQLite database at this path")
	metricsFile := flags.String("metrics-file", "", "write run metrics to this node_exporter textfile")

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return exitcodes.Success
		}
		return exitcodes.InvalidArgs
	}

	logger := logging.New()

	if *configPath != "" {
		file, err := config.LoadFile(*configPath)
		if err != nil {
			logger.Printf("ERROR: failed to load config: %v", err)
			return exitcodes.InvalidArgs
		}
		// Explicit flags win over file values.
		if !flags.Changed("size") && file.Size != "" {
			*sizeStr = file.Size
		}
		if !flags.Changed("dry-run") && file.DryRun != nil {
			*dryRun = *file.DryRun
		}
		if !flags.Changed("keep-parents") && file.KeepParents != nil {
			*keepParents = *file.KeepParents
		}
		if !flags.Changed("history") && file.HistoryPath != "" {
			*historyPath = file.HistoryPath
		}
		if !flags.Changed("metrics-file") && file.MetricsFile != "" {
			*metricsFile = file.MetricsFile
		}
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return exitcodes.InvalidArgs
	}
	if *sizeStr == "" {
		logger.Println("ERROR: --size is required")
		return exitcodes.InvalidArgs
	}

	goal, err := config.ParseSize(*sizeStr)
	if err != nil {
		logger.Printf("ERROR: %v", err)
		return exitcodes.InvalidArgs
	}

	cfg := &config.Config{
		Root:        flags.Arg(0),
		GoalBytes:   goal,
		DryRun:      *dryRun,
		KeepParents: *keepParents,
		HistoryPath: *historyPath,
		MetricsFile: *metricsFile,
		Verbose:     *verbose,
	}
	if err := cfg.Finalize(); err != nil {
		logger.Printf("ERROR: %v", err)
		return exitcodes.InvalidArgs
	}

	if cfg.DryRun {
		logger.Println("DRY RUN MODE: no files will be deleted")
	}

	engine := evict.New(cfg, logger)

	if cfg.HistoryPath != "" {
		db, err := history.Open(cfg.HistoryPath)
		if err != nil {
			logger.Printf("ERROR: failed to open history database: %v", err)
			return exitcodes.RuntimeError
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: failed to close history database: %v", err)
			}
		}()
		engine.SetHistory(db)
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
		engine.SetMetrics(m)
	}

	if err := engine.Run(); err != nil {
		logger.Printf("ERROR: %v", err)
		return exitcodes.RuntimeError
	}

	if m != nil {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Printf("ERROR: %v", err)
			return exitcodes.RuntimeError
		}
	}

	return exitcodes.Success
}
