package stats

import (
	"math"
	"strconv"

	"github.com/sanspareilsmyn/calcstats/internal/message"
)

// Float is the fast backend working on native float64 values.
type Float struct{}

var _ Arithmetic[float64] = Float{}

func (Float) Coerce(raw any) (float64, bool)    { return message.AsFloat64(raw) }
func (Float) FromInt(n int64) float64           { return float64(n) }
func (Float) Add(a, b float64) float64          { return a + b }
func (Float) Sub(a, b float64) float64          { return a - b }
func (Float) Mul(a, b float64) float64          { return a * b }
func (Float) Div(a, b float64, _ int32) float64 { return a / b }
func (Float) Sqrt(a float64) float64            { return math.Sqrt(a) }
func (Float) Round(a float64, _ int32) float64  { return a }
func (Float) NaN() float64                      { return math.NaN() }
func (Float) Encode(a float64) any              { return a }
func (Float) EncodeCount(n int64) any           { return n }

func (Float) EncodeList(values []float64) any {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

func (Float) Cmp(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (Float) Key(a float64) string {
	if a == 0 {
		// -0 and 0 share a bucket
		a = 0
	}
	return strconv.FormatFloat(a, 'f', -1, 64)
}
