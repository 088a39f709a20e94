package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/calcstats/internal/config"
	"github.com/sanspareilsmyn/calcstats/internal/logging"
	"github.com/sanspareilsmyn/calcstats/internal/pipeline"
	"github.com/sanspareilsmyn/calcstats/internal/stats"
)

var (
	configFile = flag.String("config", "", "Path to the configuration file (optional)")
	inputPath  = flag.String("input", "", "Read values from this file instead of the configured source")
	statList   = flag.String("stats", "", "Comma-separated statistics to compute (default: all)")
	precise    = flag.Bool("precise", false, "Use arbitrary-precision decimal arithmetic")
	logger     *zap.Logger
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %q: %v\n", *configFile, err)
		os.Exit(1)
	}
	if err := applyFlags(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Invalid command-line options: %v\n", err)
		os.Exit(1)
	}

	var logErr error
	logger, logErr = logging.NewLogger(cfg.Log)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", logErr)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Configuration loaded", "path", *configFile, "input", cfg.Input.Kind)

	pipe, err := pipeline.New(cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to initialize pipeline", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		sugar.Infow("Received signal, stopping input...", "signal", sig.String())
		cancel()
	}()

	res, runErr := pipe.Run(ctx)
	if runErr == nil {
		runErr = writeResult(cfg.Output, res)
	}

	finalLogLevel := zapcore.InfoLevel
	outcome := "completed"
	var finalErrorField = zap.Skip()

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		outcome = "cancelled"
		finalLogLevel = zapcore.WarnLevel
	default:
		outcome = "failed"
		finalLogLevel = zapcore.ErrorLevel
		finalErrorField = zap.Error(runErr)
	}

	logger.Log(finalLogLevel, fmt.Sprintf("calcstats %s.", outcome),
		zap.String("outcome", outcome),
		finalErrorField,
	)
	if runErr != nil {
		_ = logger.Sync()
		os.Exit(1)
	}
}

// applyFlags overrides configuration with command-line values and re-validates.
func applyFlags(cfg *config.Config) error {
	if *inputPath != "" {
		cfg.Input.Kind = config.InputFile
		cfg.Input.Path = *inputPath
	}
	if *statList != "" {
		cfg.Stats.List = strings.Split(*statList, ",")
	}
	if *precise {
		cfg.Stats.Precise = true
	}
	return cfg.Validate()
}

func writeResult(out config.OutputConfig, res stats.Result) error {
	var w io.Writer = os.Stdout
	if out.Path != "" && out.Path != "-" {
		f, err := os.Create(out.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", out.Path, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	if out.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(jsonSafe(res))
}

// jsonSafe replaces non-finite measures, which encoding/json rejects, with
// null. A product overflowing to +Inf is common on ordinary data.
func jsonSafe(res stats.Result) map[stats.Stat]any {
	out := make(map[stats.Stat]any, len(res))
	for k, v := range res {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	return out
}
