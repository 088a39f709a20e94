package stats

import (
	"math"
	"strconv"
)

// Result maps each requested statistic to its value. Fast mode yields float64
// measures and int64 counts; precise mode yields decimal strings throughout.
type Result map[Stat]any

// HistogramEntry is one histogram bucket in a Result.
type HistogramEntry struct {
	N     any `json:"n"`
	Count any `json:"ct"`
}

// Stats lists the statistics present in r, in AllStats order.
func (r Result) Stats() []Stat {
	out := make([]Stat, 0, len(r))
	for _, s := range AllStats {
		if _, ok := r[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Float returns a scalar statistic as float64 regardless of the mode it was
// computed in. Lists and maps report false.
func (r Result) Float(s Stat) (float64, bool) {
	switch v := r[s].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case string:
		if v == "NaN" {
			return math.NaN(), true
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// assemble copies the requested statistics out of the finished accumulator.
// It checks requested, not the requirements, so dependencies stay internal.
func assemble[N any](requested StatSet, acc *accumulator[N], digits int32) Result {
	arith := acc.arith
	res := make(Result)

	undefinedUnlessSeen := func(v N) N {
		if !acc.seen {
			return arith.NaN()
		}
		return v
	}

	if requested.Has(Count) {
		res[Count] = arith.EncodeCount(acc.valid + acc.invalid)
	}
	if requested.Has(Valid) {
		res[Valid] = arith.EncodeCount(acc.valid)
	}
	if requested.Has(Invalid) {
		res[Invalid] = arith.EncodeCount(acc.invalid)
	}
	if requested.Has(Min) {
		res[Min] = arith.Encode(undefinedUnlessSeen(acc.min))
	}
	if requested.Has(Max) {
		res[Max] = arith.Encode(undefinedUnlessSeen(acc.max))
	}
	if requested.Has(Range) {
		res[Range] = arith.Encode(undefinedUnlessSeen(arith.Sub(acc.max, acc.min)))
	}
	if requested.Has(Sum) {
		sum := acc.sum
		if !acc.seen {
			sum = arith.FromInt(0)
		}
		res[Sum] = arith.Encode(sum)
	}
	if requested.Has(Product) {
		product := acc.product
		if !acc.seen {
			product = arith.FromInt(1)
		}
		res[Product] = arith.Encode(product)
	}
	if requested.Has(Mean) {
		m := arith.NaN()
		if acc.seen {
			m = arith.Div(acc.sum, arith.FromInt(acc.valid), digits)
		}
		res[Mean] = arith.Encode(m)
	}

	if acc.hist == nil {
		return res
	}

	if requested.Has(Histogram) {
		h := make(map[string]HistogramEntry, acc.hist.len())
		acc.hist.each(func(key string, b *bin[N]) {
			h[key] = HistogramEntry{N: arith.Encode(b.value), Count: arith.EncodeCount(b.count)}
		})
		res[Histogram] = h
	}
	if requested.Has(Median) {
		res[Median] = arith.Encode(weightedMedian(arith, acc.hist.sorted(arith.Cmp), acc.valid, digits))
	}
	if requested.Any(Mode, Modes) {
		top := modes(acc.hist)
		if requested.Has(Modes) {
			res[Modes] = arith.EncodeList(top)
		}
		if requested.Has(Mode) {
			res[Mode] = arith.Encode(mean(arith, top, digits))
		}
	}
	if requested.Any(Variance, Std) {
		variance := populationVariance(arith, acc.hist, acc.sum, acc.valid, digits)
		if requested.Has(Variance) {
			res[Variance] = arith.Encode(arith.Round(variance, digits))
		}
		if requested.Has(Std) {
			res[Std] = arith.Encode(arith.Round(arith.Sqrt(variance), digits))
		}
	}
	if requested.Has(Frequency) {
		res[Frequency] = frequency(arith, acc.hist, acc.valid, digits)
	}
	if requested.Has(Uniques) {
		res[Uniques] = arith.EncodeList(uniques(arith, acc.hist))
	}
	return res
}
