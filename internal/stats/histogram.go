package stats

import "slices"

type bin[N any] struct {
	value N
	count int64
}

// histogram counts occurrences per canonical key and remembers the order in
// which keys were first seen.
type histogram[N any] struct {
	bins  map[string]*bin[N]
	order []string
}

func newHistogram[N any]() *histogram[N] {
	return &histogram[N]{bins: make(map[string]*bin[N])}
}

func (h *histogram[N]) add(key string, value N) {
	if b, ok := h.bins[key]; ok {
		b.count++
		return
	}
	h.bins[key] = &bin[N]{value: value, count: 1}
	h.order = append(h.order, key)
}

func (h *histogram[N]) len() int { return len(h.order) }

// each visits bins in first-occurrence order.
func (h *histogram[N]) each(fn func(key string, b *bin[N])) {
	for _, key := range h.order {
		fn(key, h.bins[key])
	}
}

// sorted returns the bins in ascending value order.
func (h *histogram[N]) sorted(cmp func(a, b N) int) []*bin[N] {
	out := make([]*bin[N], 0, len(h.order))
	for _, key := range h.order {
		out = append(out, h.bins[key])
	}
	slices.SortFunc(out, func(a, b *bin[N]) int { return cmp(a.value, b.value) })
	return out
}
