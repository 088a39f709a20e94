package stats

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sanspareilsmyn/calcstats/internal/message"
)

// DefaultPreciseMaxDecimalDigits bounds the fractional digits kept by
// precise-mode division and rounding.
const DefaultPreciseMaxDecimalDigits = 100

// minVarianceDigits is the working precision for variance so that small
// variances do not round to zero before the square root.
const minVarianceDigits = 20

// preciseValue is a decimal that can also be undefined (NaN).
type preciseValue struct {
	d   decimal.Decimal
	nan bool
}

// Precise is the arbitrary-precision backend. Values are emitted as decimal strings.
type Precise struct{}

var _ Arithmetic[preciseValue] = Precise{}

func (Precise) Coerce(raw any) (preciseValue, bool) {
	switch v := raw.(type) {
	case string:
		return parseDecimal(v)
	case json.Number:
		return parseDecimal(string(v))
	case decimal.Decimal:
		return preciseValue{d: v}, true
	case int:
		return preciseValue{d: decimal.NewFromInt(int64(v))}, true
	case int64:
		return preciseValue{d: decimal.NewFromInt(v)}, true
	case int32:
		return preciseValue{d: decimal.NewFromInt32(v)}, true
	case uint64:
		return preciseValue{d: decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)}, true
	case uint:
		return preciseValue{d: decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0)}, true
	}
	f, ok := message.AsFloat64(raw)
	if !ok {
		return preciseValue{}, false
	}
	return preciseValue{d: decimal.NewFromFloat(f)}, true
}

func parseDecimal(s string) (preciseValue, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return preciseValue{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return preciseValue{}, false
	}
	return preciseValue{d: d}, true
}

func (Precise) FromInt(n int64) preciseValue { return preciseValue{d: decimal.NewFromInt(n)} }
func (Precise) NaN() preciseValue            { return preciseValue{nan: true} }

func (Precise) Add(a, b preciseValue) preciseValue {
	if a.nan || b.nan {
		return preciseValue{nan: true}
	}
	return preciseValue{d: a.d.Add(b.d)}
}

func (Precise) Sub(a, b preciseValue) preciseValue {
	if a.nan || b.nan {
		return preciseValue{nan: true}
	}
	return preciseValue{d: a.d.Sub(b.d)}
}

func (Precise) Mul(a, b preciseValue) preciseValue {
	if a.nan || b.nan {
		return preciseValue{nan: true}
	}
	return preciseValue{d: a.d.Mul(b.d)}
}

func (Precise) Div(a, b preciseValue, digits int32) preciseValue {
	if a.nan || b.nan || b.d.IsZero() {
		return preciseValue{nan: true}
	}
	return preciseValue{d: a.d.DivRound(b.d, digits)}
}

// Cmp orders NaN before every number.
func (Precise) Cmp(a, b preciseValue) int {
	switch {
	case a.nan && b.nan:
		return 0
	case a.nan:
		return -1
	case b.nan:
		return 1
	}
	return a.d.Cmp(b.d)
}

// Sqrt goes through float64; there is no exact decimal square root.
func (Precise) Sqrt(a preciseValue) preciseValue {
	if a.nan || a.d.IsNegative() {
		return preciseValue{nan: true}
	}
	f, _ := a.d.Float64()
	root := math.Sqrt(f)
	if math.IsNaN(root) || math.IsInf(root, 0) {
		return preciseValue{nan: true}
	}
	return preciseValue{d: decimal.NewFromFloat(root)}
}

func (Precise) Round(a preciseValue, digits int32) preciseValue {
	if a.nan {
		return a
	}
	return preciseValue{d: a.d.Round(digits)}
}

func (Precise) Key(a preciseValue) string {
	if a.nan {
		return "NaN"
	}
	return a.d.String()
}

func (p Precise) Encode(a preciseValue) any { return p.Key(a) }

func (p Precise) EncodeList(values []preciseValue) any {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = p.Key(v)
	}
	return out
}

func (Precise) EncodeCount(n int64) any { return strconv.FormatInt(n, 10) }
