package pipeline

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/calcstats/internal/config"
	"github.com/sanspareilsmyn/calcstats/internal/message"
	"github.com/sanspareilsmyn/calcstats/internal/stats"
)

// buildOptions translates configuration into engine options. Async stays
// off because no configured source yields awaitable items.
func buildOptions(cfg config.StatsConfig, input config.InputConfig, logger *zap.Logger) stats.Options {
	opts := stats.Options{
		Chunked:                 cfg.Chunked,
		NoData:                  noDataValues(cfg.NoData),
		Precise:                 cfg.Precise,
		PreciseMaxDecimalDigits: int32(cfg.PreciseMaxDecimalDigits),
		Stats:                   stats.ParseStats(cfg.List),
		Timed:                   cfg.Timed,
		Logger:                  logger,
	}
	if input.Field != "" {
		opts.Map = message.Field(input.Field)
	}
	if cfg.Filter.Enabled() {
		opts.Filter = valueFilter(cfg.Filter)
	}
	return opts
}

// noDataValues turns numeric strings (as they come from env overrides) into
// json.Number so both arithmetic modes can match them.
func noDataValues(raw []interface{}) []any {
	if len(raw) == 0 {
		return nil
	}
	out := make([]any, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				out = append(out, json.Number(s))
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// valueFilter keeps items with index below MaxIndex and values strictly
// between MinValue and MaxValue.
func valueFilter(f config.FilterConfig) func(stats.FilterArgs) bool {
	return func(args stats.FilterArgs) bool {
		if f.MaxIndex > 0 && args.Index >= f.MaxIndex {
			return false
		}
		if f.MinValue == nil && f.MaxValue == nil {
			return true
		}
		v, ok := filterValue(args.Value)
		if !ok {
			return false
		}
		if f.MinValue != nil && v <= *f.MinValue {
			return false
		}
		if f.MaxValue != nil && v >= *f.MaxValue {
			return false
		}
		return true
	}
}

func filterValue(raw any) (float64, bool) {
	if s, ok := raw.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return message.AsFloat64(raw)
}
