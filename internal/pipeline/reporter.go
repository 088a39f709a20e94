package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/calcstats/internal/config"
	"github.com/sanspareilsmyn/calcstats/internal/stats"
)

// Reporter checks a computed result against thresholds and exports it as
// Prometheus metrics.
type Reporter struct {
	thresholds config.Thresholds
	metrics    config.MetricsConfig
	logger     *zap.Logger

	registry   *prometheus.Registry
	statValue  *prometheus.GaugeVec
	items      *prometheus.GaugeVec
	duration   prometheus.Gauge
	violations *prometheus.CounterVec
}

// NewReporter creates a Reporter with its own metric registry.
func NewReporter(thresholds config.Thresholds, metrics config.MetricsConfig, logger *zap.Logger) *Reporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Reporter{
		thresholds: thresholds,
		metrics:    metrics,
		logger:     logger,
		registry:   reg,
		statValue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "calcstats_statistic_value",
				Help: "Value of a scalar statistic from the last computation.",
			},
			[]string{"stat"},
		),
		items: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "calcstats_items",
				Help: "Number of items classified as valid or invalid in the last computation.",
			},
			[]string{"class"},
		),
		duration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "calcstats_computation_duration_seconds",
				Help: "Wall time of the last computation.",
			},
		),
		violations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcstats_threshold_violations_total",
				Help: "Total number of threshold violations detected per check.",
			},
			[]string{"check_type", "comparison"}, // check_type: invalid_rate, mean, stddev
		),
	}

	logger.Debug("Reporter initialized",
		zap.Bool("metrics_enabled", metrics.Enabled),
		zap.String("push_gateway", metrics.PushGatewayURL),
	)
	return r
}

// Registry exposes the metrics collected by the reporter.
func (r *Reporter) Registry() *prometheus.Registry {
	return r.registry
}

// Report updates gauges, checks thresholds, logs the statistics and pushes
// them to the Pushgateway when configured.
func (r *Reporter) Report(ctx context.Context, res stats.Result, elapsed time.Duration) error {
	sugar := r.logger.Sugar()

	for _, s := range res.Stats() {
		if v, ok := res.Float(s); ok && !math.IsNaN(v) {
			r.statValue.WithLabelValues(string(s)).Set(v)
		}
	}
	if v, ok := res.Float(stats.Valid); ok {
		r.items.WithLabelValues("valid").Set(v)
	}
	if v, ok := res.Float(stats.Invalid); ok {
		r.items.WithLabelValues("invalid").Set(v)
	}
	r.duration.Set(elapsed.Seconds())

	invalidRate := math.NaN()
	count, hasCount := res.Float(stats.Count)
	invalid, hasInvalid := res.Float(stats.Invalid)
	if hasCount && hasInvalid && count > 0 {
		invalidRate = invalid / count
	}
	mean := floatOrNaN(res, stats.Mean)
	stdDev := floatOrNaN(res, stats.Std)

	r.checkInvalidRate(sugar, invalidRate, r.thresholds.InvalidRate)
	r.checkBounds(sugar, "mean", mean, r.thresholds.MeanMin, r.thresholds.MeanMax)
	r.checkBounds(sugar, "stddev", stdDev, r.thresholds.StdDevMin, r.thresholds.StdDevMax)

	r.logStats(sugar, res, invalidRate, elapsed)

	if r.metrics.Enabled && r.metrics.PushGatewayURL != "" {
		err := push.New(r.metrics.PushGatewayURL, r.metrics.Job).
			Gatherer(r.registry).
			PushContext(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMetricsPushFailed, err)
		}
		sugar.Debugw("Metrics pushed", "url", r.metrics.PushGatewayURL, "job", r.metrics.Job)
	}
	return nil
}

func floatOrNaN(res stats.Result, s stats.Stat) float64 {
	if v, ok := res.Float(s); ok {
		return v
	}
	return math.NaN()
}

func (r *Reporter) checkInvalidRate(sugar *zap.SugaredLogger, actualRate float64, threshold *float64) {
	if threshold == nil || math.IsNaN(actualRate) {
		return
	}
	if actualRate > *threshold {
		sugar.Warnw("Invalid rate violation",
			zap.Float64("actual", actualRate),
			zap.Float64("threshold", *threshold),
			zap.String("comparison", ">"),
		)
		r.violations.WithLabelValues("invalid_rate", ">").Inc()
	}
}

// checkBounds compares a statistic with optional lower and upper thresholds.
func (r *Reporter) checkBounds(sugar *zap.SugaredLogger, check string, actual float64, minThreshold, maxThreshold *float64) {
	if math.IsNaN(actual) {
		return
	}
	if minThreshold != nil && actual < *minThreshold {
		sugar.Warnw("Threshold violation (Min)",
			zap.String("check_type", check),
			zap.Float64("actual", actual),
			zap.Float64("threshold", *minThreshold),
			zap.String("comparison", "<"),
		)
		r.violations.WithLabelValues(check, "<").Inc()
	}
	if maxThreshold != nil && actual > *maxThreshold {
		sugar.Warnw("Threshold violation (Max)",
			zap.String("check_type", check),
			zap.Float64("actual", actual),
			zap.Float64("threshold", *maxThreshold),
			zap.String("comparison", ">"),
		)
		r.violations.WithLabelValues(check, ">").Inc()
	}
}

func (r *Reporter) logStats(sugar *zap.SugaredLogger, res stats.Result, invalidRate float64, elapsed time.Duration) {
	fields := []interface{}{
		zap.Int("stats", len(res)),
		zap.Duration("elapsed", elapsed),
	}
	if !math.IsNaN(invalidRate) {
		fields = append(fields, zap.Float64("invalid_rate", invalidRate))
	}
	for _, s := range []stats.Stat{stats.Count, stats.Mean, stats.Median, stats.Std} {
		if v, ok := res.Float(s); ok && !math.IsNaN(v) {
			fields = append(fields, zap.Float64(string(s), v))
		}
	}
	sugar.Infow("Statistics processed", fields...)
}
