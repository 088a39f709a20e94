package stats

// Calculators over the final accumulator state. None of them touch the stream.

// weightedMedian treats the sorted bins as run-length encoded data and finds
// the middle rank(s) without expanding it.
func weightedMedian[N any](arith Arithmetic[N], bins []*bin[N], total int64, digits int32) N {
	if total <= 0 || len(bins) == 0 {
		return arith.NaN()
	}
	lo := (total + 1) / 2
	hi := lo
	if total%2 == 0 {
		hi = total/2 + 1
	}

	var loValue, hiValue N
	foundLo := false
	var seen int64
	for _, b := range bins {
		seen += b.count
		if !foundLo && seen >= lo {
			loValue = b.value
			foundLo = true
		}
		if seen >= hi {
			hiValue = b.value
			break
		}
	}
	if lo == hi {
		return loValue
	}
	return arith.Div(arith.Add(loValue, hiValue), arith.FromInt(2), digits)
}

// populationVariance is sum(count * (v - mean)^2) / n over the histogram.
// The result keeps at least minVarianceDigits fractional digits; callers
// round it for output after deriving the standard deviation.
func populationVariance[N any](arith Arithmetic[N], h *histogram[N], sum N, n int64, digits int32) N {
	if n <= 0 {
		return arith.NaN()
	}
	work := max(digits, minVarianceDigits)
	count := arith.FromInt(n)
	m := arith.Div(sum, count, work)

	total := arith.FromInt(0)
	h.each(func(_ string, b *bin[N]) {
		d := arith.Sub(b.value, m)
		total = arith.Add(total, arith.Mul(arith.FromInt(b.count), arith.Mul(d, d)))
	})
	return arith.Div(total, count, work)
}

// modes returns the most frequent values in first-occurrence order.
func modes[N any](h *histogram[N]) []N {
	var best int64
	var out []N
	h.each(func(_ string, b *bin[N]) {
		switch {
		case b.count > best:
			best = b.count
			out = append(out[:0], b.value)
		case b.count == best:
			out = append(out, b.value)
		}
	})
	return out
}

func frequency[N any](arith Arithmetic[N], h *histogram[N], n int64, digits int32) map[string]any {
	out := make(map[string]any, h.len())
	total := arith.FromInt(n)
	h.each(func(key string, b *bin[N]) {
		out[key] = arith.Encode(arith.Div(arith.FromInt(b.count), total, digits))
	})
	return out
}

func uniques[N any](arith Arithmetic[N], h *histogram[N]) []N {
	bins := h.sorted(arith.Cmp)
	out := make([]N, len(bins))
	for i, b := range bins {
		out[i] = b.value
	}
	return out
}
