package stats

import (
	"strings"

	"go.uber.org/zap"
)

// Stat identifies one statistic the engine can produce.
type Stat string

const (
	Count     Stat = "count"
	Valid     Stat = "valid"
	Invalid   Stat = "invalid"
	Min       Stat = "min"
	Max       Stat = "max"
	Sum       Stat = "sum"
	Product   Stat = "product"
	Mean      Stat = "mean"
	Median    Stat = "median"
	Mode      Stat = "mode"
	Modes     Stat = "modes"
	Range     Stat = "range"
	Variance  Stat = "variance"
	Std       Stat = "std"
	Histogram Stat = "histogram"
	Frequency Stat = "frequency"
	Uniques   Stat = "uniques"
)

// AllStats lists every known statistic in a stable order.
var AllStats = []Stat{
	Count, Valid, Invalid, Min, Max, Sum, Product, Mean, Median,
	Mode, Modes, Range, Variance, Std, Histogram, Frequency, Uniques,
}

var statBits = func() map[Stat]StatSet {
	m := make(map[Stat]StatSet, len(AllStats))
	for i, s := range AllStats {
		m[s] = 1 << uint(i)
	}
	return m
}()

// Known reports whether s is one of the supported statistics.
func (s Stat) Known() bool {
	_, ok := statBits[s]
	return ok
}

// StatSet is an immutable bitset of requested statistics.
type StatSet uint32

// NewStatSet builds a set from stats. Unknown identifiers are logged and skipped.
// An empty list selects every statistic.
func NewStatSet(stats []Stat, logger *zap.Logger) StatSet {
	if len(stats) == 0 {
		return AllStatSet()
	}
	var set StatSet
	for _, s := range stats {
		bit, ok := statBits[s]
		if !ok {
			if logger != nil {
				logger.Warn("Ignoring unknown statistic", zap.String("stat", string(s)))
			}
			continue
		}
		set |= bit
	}
	return set
}

// AllStatSet returns a set holding every statistic.
func AllStatSet() StatSet {
	var set StatSet
	for _, bit := range statBits {
		set |= bit
	}
	return set
}

// Has reports whether s is in the set.
func (set StatSet) Has(s Stat) bool {
	return set&statBits[s] != 0
}

// Any reports whether at least one of stats is in the set.
func (set StatSet) Any(stats ...Stat) bool {
	for _, s := range stats {
		if set.Has(s) {
			return true
		}
	}
	return false
}

// Stats returns the members of the set in AllStats order.
func (set StatSet) Stats() []Stat {
	out := make([]Stat, 0, len(AllStats))
	for _, s := range AllStats {
		if set.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// ParseStats normalizes names into identifiers. Unknown names are kept so
// that the engine can warn about them and leave them out of the result.
func ParseStats(names []string) []Stat {
	out := make([]Stat, 0, len(names))
	for _, name := range names {
		s := Stat(strings.ToLower(strings.TrimSpace(name)))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
