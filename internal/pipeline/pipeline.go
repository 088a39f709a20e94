package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/calcstats/internal/config"
	"github.com/sanspareilsmyn/calcstats/internal/source"
	"github.com/sanspareilsmyn/calcstats/internal/stats"
)

// Pipeline orchestrates the stages of one run: source, computation, reporting.
type Pipeline struct {
	cfg      *config.Config
	opts     stats.Options
	reporter *Reporter
	open     func() (source.Stream, error)
	logger   *zap.Logger
}

// New creates and wires up a pipeline for cfg.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")
	initLogger.Debug("Creating pipeline components...")

	opts := buildOptions(cfg.Stats, cfg.Input, logger.Named("stats"))
	initLogger.Debug("Engine options built",
		zap.Int("requested_stats", len(opts.Stats)),
		zap.Bool("precise", opts.Precise),
		zap.Bool("filter", opts.Filter != nil),
		zap.Bool("projection", opts.Map != nil),
	)

	reporter := NewReporter(cfg.Thresholds, cfg.Metrics, logger.Named("reporter"))
	initLogger.Debug("Reporter created")

	sourceLogger := logger.Named("source")
	p := &Pipeline{
		cfg:      cfg,
		opts:     opts,
		reporter: reporter,
		open: func() (source.Stream, error) {
			return source.Open(cfg.Input, cfg.Kafka, sourceLogger)
		},
		logger: logger.Named("pipeline"),
	}

	initLogger.Info("Pipeline instance created successfully", zap.String("input", cfg.Input.Kind))
	return p, nil
}

// Reporter returns the reporter used by the pipeline.
func (p *Pipeline) Reporter() *Reporter {
	return p.reporter
}

// Run opens the configured source, computes the statistics in a single pass
// and reports them. A failing source aborts the run without a result.
func (p *Pipeline) Run(ctx context.Context) (stats.Result, error) {
	sugar := p.logger.Sugar()

	stream, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceOpenFailed, err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			sugar.Warnw("Failed to close input source", zap.Error(err))
		}
	}()

	sugar.Infow("Pipeline Run: computing statistics...", "input", p.cfg.Input.Kind)
	start := time.Now()
	res, err := stats.Compute(ctx, stream, p.opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			sugar.Info("Pipeline Run: computation cancelled.")
		}
		return nil, fmt.Errorf("%w: %w", ErrComputeFailed, err)
	}
	elapsed := time.Since(start)

	if err := p.reporter.Report(ctx, res, elapsed); err != nil {
		// the result is still valid when only the export fails
		sugar.Errorw("Pipeline Run: reporting failed", zap.Error(err))
	}
	return res, nil
}
