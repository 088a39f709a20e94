package stats

import "go.uber.org/zap"

// Options configures one computation.
type Options struct {
	// Async awaits items implementing Awaitable before classifying them.
	Async bool
	// Chunked treats every item as a batch of values.
	Chunked bool
	// NoData holds sentinel values that are always invalid.
	NoData []any
	// Filter rejects items for which it returns false.
	Filter func(FilterArgs) bool
	// Map projects every value before validity checks.
	Map func(any) any
	// Precise switches to decimal arithmetic with string output.
	Precise bool
	// PreciseMaxDecimalDigits bounds fractional digits of precise divisions.
	PreciseMaxDecimalDigits int32
	// Stats selects the statistics to return; empty means all.
	Stats []Stat
	// Timed logs the duration of the pass.
	Timed  bool
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.PreciseMaxDecimalDigits <= 0 {
		o.PreciseMaxDecimalDigits = DefaultPreciseMaxDecimalDigits
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
