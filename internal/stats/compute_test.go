package stats_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanspareilsmyn/calcstats/internal/message"
	"github.com/sanspareilsmyn/calcstats/internal/source"
	"github.com/sanspareilsmyn/calcstats/internal/stats"
)

const epsilon = 1e-9

// sequence repeats every value v in 1..99 exactly v times.
func sequence() []float64 {
	nums := make([]float64, 0, 4950)
	for i := 1; i < 100; i++ {
		for n := 0; n < i; n++ {
			nums = append(nums, float64(i))
		}
	}
	return nums
}

func compute(t *testing.T, data any, opts stats.Options) stats.Result {
	t.Helper()
	it, err := source.From(data)
	require.NoError(t, err)
	res, err := stats.Compute(context.Background(), it, opts)
	require.NoError(t, err)
	return res
}

func TestComputeAllStats(t *testing.T) {
	res := compute(t, sequence(), stats.Options{})

	assert.ElementsMatch(t, stats.AllStats, res.Stats())
	assert.Equal(t, int64(4950), res[stats.Count])
	assert.Equal(t, int64(4950), res[stats.Valid])
	assert.Equal(t, int64(0), res[stats.Invalid])
	assert.Equal(t, 1.0, res[stats.Min])
	assert.Equal(t, 99.0, res[stats.Max])
	assert.Equal(t, 98.0, res[stats.Range])
	assert.Equal(t, 328350.0, res[stats.Sum])
	assert.Equal(t, 66.33333333333333, res[stats.Mean])
	assert.Equal(t, 70.0, res[stats.Median])
	assert.Equal(t, 99.0, res[stats.Mode])
	assert.Equal(t, []float64{99}, res[stats.Modes])
	assert.InDelta(t, 549.8888888888889, res[stats.Variance], epsilon)
	assert.InDelta(t, 23.44970978261541, res[stats.Std], epsilon)
	assert.True(t, math.IsInf(res[stats.Product].(float64), 1))

	uniques := res[stats.Uniques].([]float64)
	require.Len(t, uniques, 99)
	assert.Equal(t, 1.0, uniques[0])
	assert.Equal(t, 99.0, uniques[98])

	hist := res[stats.Histogram].(map[string]stats.HistogramEntry)
	require.Len(t, hist, 99)
	assert.Equal(t, stats.HistogramEntry{N: 70.0, Count: int64(70)}, hist["70"])

	freq := res[stats.Frequency].(map[string]any)
	assert.InDelta(t, 99.0/4950.0, freq["99"], epsilon)
}

func TestComputeNoData(t *testing.T) {
	res := compute(t, sequence(), stats.Options{NoData: []any{99}})

	assert.Equal(t, int64(4950), res[stats.Count])
	assert.Equal(t, int64(4851), res[stats.Valid])
	assert.Equal(t, int64(99), res[stats.Invalid])
	assert.Equal(t, 98.0, res[stats.Max])
	assert.Equal(t, 97.0, res[stats.Range])
	assert.Equal(t, 318549.0, res[stats.Sum])
	assert.Equal(t, 65.66666666666667, res[stats.Mean])
	assert.Equal(t, 70.0, res[stats.Median])
	assert.Equal(t, []float64{98}, res[stats.Modes])
	assert.InDelta(t, 538.8888888888889, res[stats.Variance], epsilon)
	assert.InDelta(t, 23.213980461973534, res[stats.Std], epsilon)
}

func TestComputeNoDataList(t *testing.T) {
	res := compute(t, sequence(), stats.Options{
		NoData: []any{99, 98, "not a number"},
		Stats:  []stats.Stat{stats.Valid, stats.Invalid, stats.Max},
	})

	assert.Equal(t, stats.Result{
		stats.Valid:   int64(4950 - 99 - 98),
		stats.Invalid: int64(99 + 98),
		stats.Max:     97.0,
	}, res)
}

func TestComputeMedianWithNoData(t *testing.T) {
	data := make([]any, 0, 100200)
	for i := 0; i < 100000; i++ {
		data = append(data, -99)
	}
	for i := 0; i < 100; i++ {
		data = append(data, 0)
	}
	for i := 0; i < 100; i++ {
		data = append(data, 1)
	}

	res := compute(t, data, stats.Options{NoData: []any{-99}})

	assert.Equal(t, int64(100200), res[stats.Count])
	assert.Equal(t, int64(100000), res[stats.Invalid])
	assert.Equal(t, int64(200), res[stats.Valid])
	assert.Equal(t, 0.5, res[stats.Median])
	assert.Equal(t, 0.5, res[stats.Mean])
	assert.Equal(t, 0.5, res[stats.Mode])
	assert.Equal(t, []float64{0, 1}, res[stats.Modes])
	assert.Equal(t, 0.25, res[stats.Variance])
	assert.Equal(t, 0.5, res[stats.Std])
	assert.Equal(t, []float64{0, 1}, res[stats.Uniques])
	assert.Equal(t, map[string]stats.HistogramEntry{
		"0": {N: 0.0, Count: int64(100)},
		"1": {N: 1.0, Count: int64(100)},
	}, res[stats.Histogram])
}

func TestComputeFilterByValue(t *testing.T) {
	res := compute(t, sequence(), stats.Options{
		Filter: func(args stats.FilterArgs) bool {
			v := args.Value.(float64)
			return v > 45 && v < 55
		},
	})

	assert.Equal(t, int64(4950), res[stats.Count])
	assert.Equal(t, int64(450), res[stats.Valid])
	assert.Equal(t, int64(4500), res[stats.Invalid])
	assert.Equal(t, 46.0, res[stats.Min])
	assert.Equal(t, 54.0, res[stats.Max])
	assert.Equal(t, 8.0, res[stats.Range])
	assert.Equal(t, 22560.0, res[stats.Sum])
	assert.Equal(t, 50.13333333333333, res[stats.Mean])
	assert.Equal(t, 50.0, res[stats.Median])
	assert.Equal(t, []float64{54}, res[stats.Modes])
	assert.InDelta(t, 6.648888888888889, res[stats.Variance], epsilon)
	assert.InDelta(t, 2.578543947441829, res[stats.Std], epsilon)
}

func TestComputeFilterByIndex(t *testing.T) {
	res := compute(t, sequence(), stats.Options{
		Filter: func(args stats.FilterArgs) bool { return args.Index < 10 },
	})

	assert.Equal(t, int64(4950), res[stats.Count])
	assert.Equal(t, int64(9), res[stats.Valid])
	assert.Equal(t, int64(4941), res[stats.Invalid])
	assert.Equal(t, 1.0, res[stats.Min])
	assert.Equal(t, 4.0, res[stats.Max])
	assert.Equal(t, 26.0, res[stats.Sum])
	assert.Equal(t, 2.888888888888889, res[stats.Mean])
	assert.Equal(t, 3.0, res[stats.Median])
	assert.Equal(t, []float64{3, 4}, res[stats.Modes])
	assert.Equal(t, 3.5, res[stats.Mode])
	assert.InDelta(t, 0.9876543209876544, res[stats.Variance], epsilon)
	assert.InDelta(t, 0.9938079899999066, res[stats.Std], epsilon)
	assert.Equal(t, map[string]stats.HistogramEntry{
		"1": {N: 1.0, Count: int64(1)},
		"2": {N: 2.0, Count: int64(2)},
		"3": {N: 3.0, Count: int64(3)},
		"4": {N: 4.0, Count: int64(3)},
	}, res[stats.Histogram])
}

func TestComputeFilterSeesValidCount(t *testing.T) {
	var seen []int64
	compute(t, []any{5, "x", 6, 7}, stats.Options{
		Stats: []stats.Stat{stats.Sum},
		Filter: func(args stats.FilterArgs) bool {
			seen = append(seen, args.Valid)
			return args.Valid < 2
		},
	})
	// "x" never reaches the filter; 7 is rejected because two values were accepted
	assert.Equal(t, []int64{0, 1, 2}, seen)
}

func TestComputeNulls(t *testing.T) {
	data := []any{61, nil, nil, nil, nil, nil, nil, nil, nil, nil}
	res := compute(t, data, stats.Options{})

	assert.Equal(t, int64(10), res[stats.Count])
	assert.Equal(t, int64(1), res[stats.Valid])
	assert.Equal(t, int64(9), res[stats.Invalid])
	assert.Equal(t, 61.0, res[stats.Median])
	assert.Equal(t, 61.0, res[stats.Mean])
	assert.Equal(t, 0.0, res[stats.Range])
	assert.Equal(t, 0.0, res[stats.Variance])
	assert.Equal(t, 0.0, res[stats.Std])
	assert.Equal(t, []float64{61}, res[stats.Uniques])
}

func TestComputeInvalidValues(t *testing.T) {
	data := []any{1, "2", math.NaN(), math.Inf(1), true, map[string]any{}, 3}
	res := compute(t, data, stats.Options{Stats: []stats.Stat{stats.Count, stats.Valid, stats.Invalid, stats.Sum}})

	assert.Equal(t, stats.Result{
		stats.Count:   int64(7),
		stats.Valid:   int64(2),
		stats.Invalid: int64(5),
		stats.Sum:     4.0,
	}, res)
}

func TestComputeNoValidValues(t *testing.T) {
	res := compute(t, []any{nil, "a", nil}, stats.Options{})

	assert.Equal(t, int64(3), res[stats.Count])
	assert.Equal(t, int64(0), res[stats.Valid])
	assert.Equal(t, 0.0, res[stats.Sum])
	assert.Equal(t, 1.0, res[stats.Product])
	for _, s := range []stats.Stat{stats.Min, stats.Max, stats.Range, stats.Mean, stats.Median, stats.Mode, stats.Variance, stats.Std} {
		v, ok := res.Float(s)
		require.True(t, ok, s)
		assert.True(t, math.IsNaN(v), "%s should be NaN", s)
	}
	assert.Empty(t, res[stats.Modes])
	assert.Empty(t, res[stats.Uniques])
}

func TestComputeRequestedSubset(t *testing.T) {
	full := compute(t, sequence(), stats.Options{})

	subsets := [][]stats.Stat{
		{stats.Min, stats.Max, stats.Median, stats.Std},
		{stats.Std},
		{stats.Mean},
		{stats.Count, stats.Product},
		{stats.Uniques, stats.Range},
	}
	for _, subset := range subsets {
		res := compute(t, sequence(), stats.Options{Stats: subset})
		assert.ElementsMatch(t, subset, res.Stats())
		for _, s := range subset {
			assert.Equal(t, full[s], res[s], s)
		}
	}
}

func TestComputeUnknownStatIsIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	res := compute(t, sequence(), stats.Options{
		Stats:  []stats.Stat{stats.Min, "bogus"},
		Logger: zap.New(core),
	})

	assert.Equal(t, stats.Result{stats.Min: 1.0}, res)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "bogus", logs.All()[0].ContextMap()["stat"])
}

func TestComputeProduct(t *testing.T) {
	res := compute(t, []float64{2, 3, 4}, stats.Options{Stats: []stats.Stat{stats.Product}})
	assert.Equal(t, stats.Result{stats.Product: 24.0}, res)
}

func TestComputeMap(t *testing.T) {
	data := []any{
		message.DynamicMessage{"v": 1.0},
		message.DynamicMessage{"v": nil},
		map[string]any{"v": 3},
		message.DynamicMessage{"other": 4.0},
	}
	res := compute(t, data, stats.Options{
		Map:   message.Field("v"),
		Stats: []stats.Stat{stats.Valid, stats.Invalid, stats.Mean},
	})
	assert.Equal(t, stats.Result{stats.Valid: int64(2), stats.Invalid: int64(2), stats.Mean: 2.0}, res)
}

func TestComputeEquivalentAcrossDeliveryModes(t *testing.T) {
	nums := sequence()
	expected := compute(t, nums, stats.Options{})

	t.Run("async deferred items", func(t *testing.T) {
		items := make([]any, len(nums))
		for i, n := range nums {
			items[i] = source.Resolved(n)
		}
		assert.Equal(t, expected, compute(t, items, stats.Options{Async: true}))
	})

	t.Run("channel", func(t *testing.T) {
		ch := make(chan any)
		go func() {
			defer close(ch)
			for _, n := range nums {
				ch <- n
			}
		}()
		assert.Equal(t, expected, compute(t, ch, stats.Options{Async: true}))
	})

	t.Run("chunked", func(t *testing.T) {
		var batches [][]float64
		for start := 0; start < len(nums); start += 7 {
			end := min(start+7, len(nums))
			batches = append(batches, nums[start:end])
		}
		assert.Equal(t, expected, compute(t, batches, stats.Options{Chunked: true}))
	})

	t.Run("chunked async", func(t *testing.T) {
		var batches []any
		for start := 0; start < len(nums); start += 50 {
			end := min(start+50, len(nums))
			batch := nums[start:end]
			batches = append(batches, source.Deferred(func(context.Context) (any, error) { return batch, nil }))
		}
		assert.Equal(t, expected, compute(t, batches, stats.Options{Async: true, Chunked: true}))
	})

	t.Run("seq", func(t *testing.T) {
		seq := func(yield func(any) bool) {
			for _, n := range nums {
				if !yield(n) {
					return
				}
			}
		}
		assert.Equal(t, expected, compute(t, seq, stats.Options{}))
	})
}

func TestComputeSyncModeTreatsDeferredAsInvalid(t *testing.T) {
	items := []any{source.Resolved(1.0), 2.0}
	res := compute(t, items, stats.Options{Stats: []stats.Stat{stats.Valid, stats.Invalid}})
	assert.Equal(t, stats.Result{stats.Valid: int64(1), stats.Invalid: int64(1)}, res)
}

type failingSource struct {
	remaining int
}

func (f *failingSource) Next(context.Context) (any, bool, error) {
	if f.remaining == 0 {
		return nil, false, errors.New("boom")
	}
	f.remaining--
	return 1.0, true, nil
}

func TestComputeSourceFailureAborts(t *testing.T) {
	res, err := stats.Compute(context.Background(), &failingSource{remaining: 5}, stats.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, stats.ErrSourceFailed)
	assert.Nil(t, res)
}

func TestComputeAwaitFailureAborts(t *testing.T) {
	items := []any{source.Resolved(1.0), source.Rejected(errors.New("rejected")), source.Resolved(2.0)}
	it, err := source.From(items)
	require.NoError(t, err)

	res, err := stats.Compute(context.Background(), it, stats.Options{Async: true})
	assert.ErrorIs(t, err, stats.ErrAwaitFailed)
	assert.Nil(t, res)
}

func TestComputeCancelledChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := stats.Compute(ctx, source.FromChannel(make(chan any)), stats.Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestStartReturnsDeferredResult(t *testing.T) {
	ch := make(chan any)
	pending := stats.Start(context.Background(), source.FromChannel(ch), stats.Options{Stats: []stats.Stat{stats.Sum}})

	for _, v := range []float64{1, 2, 3} {
		ch <- v
	}
	close(ch)

	<-pending.Done()
	res, err := pending.Wait()
	require.NoError(t, err)
	assert.Equal(t, stats.Result{stats.Sum: 6.0}, res)
}

func TestComputeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		data := make([]any, 500)
		var valid []float64
		for i := range data {
			switch rng.Intn(10) {
			case 0:
				data[i] = nil
			default:
				v := float64(rng.Intn(200)-100) / 4
				data[i] = v
				valid = append(valid, v)
			}
		}

		res := compute(t, data, stats.Options{})

		minV, _ := res.Float(stats.Min)
		maxV, _ := res.Float(stats.Max)
		rangeV, _ := res.Float(stats.Range)
		assert.Equal(t, maxV-minV, rangeV)

		count, _ := res.Float(stats.Count)
		validN, _ := res.Float(stats.Valid)
		invalidN, _ := res.Float(stats.Invalid)
		assert.Equal(t, count, validN+invalidN)
		assert.Equal(t, float64(len(valid)), validN)

		var sum float64
		for _, v := range valid {
			sum += v
		}
		m := sum / float64(len(valid))
		var sq float64
		for _, v := range valid {
			sq += (v - m) * (v - m)
		}
		assert.InDelta(t, sq/float64(len(valid)), res[stats.Variance], 1e-6)
	}
}
