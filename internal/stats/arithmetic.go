package stats

// Arithmetic is the numeric capability shared by the accumulator and the
// derived calculators. One backend is chosen per computation.
type Arithmetic[N any] interface {
	// Coerce converts a raw stream item into a finite number.
	Coerce(raw any) (N, bool)
	FromInt(n int64) N
	Add(a, b N) N
	Sub(a, b N) N
	Mul(a, b N) N
	// Div divides a by b keeping at most digits fractional digits where the
	// backend rounds at all.
	Div(a, b N, digits int32) N
	Cmp(a, b N) int
	Sqrt(a N) N
	Round(a N, digits int32) N
	NaN() N
	// Key is the canonical text of a value; equal values share one key.
	Key(a N) string
	// Encode converts a value into its output representation.
	Encode(a N) any
	EncodeList(values []N) any
	EncodeCount(n int64) any
}

func mean[N any](arith Arithmetic[N], values []N, digits int32) N {
	if len(values) == 0 {
		return arith.NaN()
	}
	total := values[0]
	for _, v := range values[1:] {
		total = arith.Add(total, v)
	}
	return arith.Div(total, arith.FromInt(int64(len(values))), digits)
}
