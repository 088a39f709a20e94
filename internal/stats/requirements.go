package stats

// Requirements lists the accumulator fields one computation must maintain.
// It is resolved once before streaming and never changes during the pass.
type Requirements struct {
	Histogram bool
	Valid     bool
	Invalid   bool
	Index     bool
	Sum       bool
	Min       bool
	Max       bool
	Product   bool
}

// Resolve derives the minimal set of running fields needed for requested.
// A filter predicate needs the valid count, the invalid count and the index.
func Resolve(requested StatSet, hasFilter bool) Requirements {
	return Requirements{
		Histogram: requested.Any(Histogram, Frequency, Median, Mode, Modes, Variance, Std, Uniques),
		Valid:     hasFilter || requested.Any(Count, Valid, Mean, Median, Product, Variance, Std, Frequency),
		Invalid:   hasFilter || requested.Any(Count, Invalid),
		Index:     hasFilter,
		Sum:       requested.Any(Sum, Mean, Variance, Std),
		Min:       requested.Any(Min, Range),
		Max:       requested.Any(Max, Range),
		Product:   requested.Has(Product),
	}
}
