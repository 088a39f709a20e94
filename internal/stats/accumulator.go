package stats

// accumulator owns every running field of one computation.
type accumulator[N any] struct {
	req   Requirements
	arith Arithmetic[N]

	valid   int64
	invalid int64
	index   int64

	seen    bool
	min     N
	max     N
	sum     N
	product N
	hist    *histogram[N]
}

func newAccumulator[N any](req Requirements, arith Arithmetic[N]) *accumulator[N] {
	acc := &accumulator[N]{req: req, arith: arith}
	if req.Histogram {
		acc.hist = newHistogram[N]()
	}
	return acc
}

func (a *accumulator[N]) reject() {
	if a.req.Invalid {
		a.invalid++
	}
}

// observe folds one valid value into the flagged fields.
func (a *accumulator[N]) observe(v N) {
	if a.req.Valid {
		a.valid++
	}

	if !a.seen {
		a.seen = true
		a.min, a.max, a.sum, a.product = v, v, v, v
	} else {
		if a.req.Min && a.arith.Cmp(v, a.min) < 0 {
			a.min = v
		}
		if a.req.Max && a.arith.Cmp(v, a.max) > 0 {
			a.max = v
		}
		if a.req.Sum {
			a.sum = a.arith.Add(a.sum, v)
		}
		if a.req.Product {
			a.product = a.arith.Mul(a.product, v)
		}
	}

	if a.req.Histogram {
		a.hist.add(a.arith.Key(v), v)
	}
}
