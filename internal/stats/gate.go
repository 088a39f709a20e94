package stats

// FilterArgs is handed to a filter predicate for every item that passed the
// numeric and sentinel checks.
type FilterArgs struct {
	// Valid is the number of items accepted before this one.
	Valid int64
	// Index is the 1-based position of the item in the stream, counting
	// rejected items too.
	Index int64
	// Value is the item after projection, as it appeared in the stream.
	Value any
}

// gate classifies raw items as valid or invalid before accumulation.
type gate[N any] struct {
	arith  Arithmetic[N]
	acc    *accumulator[N]
	noData map[string]struct{}
	filter func(FilterArgs) bool
}

func newGate[N any](arith Arithmetic[N], acc *accumulator[N], noData []any, filter func(FilterArgs) bool) *gate[N] {
	g := &gate[N]{arith: arith, acc: acc, filter: filter}
	if len(noData) > 0 {
		g.noData = make(map[string]struct{}, len(noData))
		for _, raw := range noData {
			// a sentinel that is not a number can never match a valid value
			if v, ok := arith.Coerce(raw); ok {
				g.noData[arith.Key(v)] = struct{}{}
			}
		}
	}
	return g
}

func (g *gate[N]) admit(raw any) {
	acc := g.acc
	if acc.req.Index {
		acc.index++
	}

	v, ok := g.arith.Coerce(raw)
	if !ok {
		acc.reject()
		return
	}
	if g.noData != nil {
		if _, hit := g.noData[g.arith.Key(v)]; hit {
			acc.reject()
			return
		}
	}
	if g.filter != nil && !g.filter(FilterArgs{Valid: acc.valid, Index: acc.index, Value: raw}) {
		acc.reject()
		return
	}
	acc.observe(v)
}
