package stats

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// Source yields raw items one at a time. ok is false once the stream ends.
type Source interface {
	Next(ctx context.Context) (item any, ok bool, err error)
}

// Awaitable is an item whose value is produced later. It is resolved only
// when Options.Async is set.
type Awaitable interface {
	Await(ctx context.Context) (any, error)
}

// Compute consumes src once and returns the requested statistics.
// Any source or await failure aborts the pass without a partial result.
func Compute(ctx context.Context, src Source, opts Options) (Result, error) {
	opts = opts.withDefaults()
	if opts.Precise {
		return run[preciseValue](ctx, src, opts, Precise{})
	}
	return run[float64](ctx, src, opts, Float{})
}

// Pending is a computation running in its own goroutine.
type Pending struct {
	done   chan struct{}
	result Result
	err    error
}

// Start launches Compute in the background and returns its deferred result.
func Start(ctx context.Context, src Source, opts Options) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.result, p.err = Compute(ctx, src, opts)
	}()
	return p
}

// Done is closed once the computation has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the computation finishes.
func (p *Pending) Wait() (Result, error) {
	<-p.done
	return p.result, p.err
}

func run[N any](ctx context.Context, src Source, opts Options, arith Arithmetic[N]) (Result, error) {
	logger := opts.Logger.Named("engine")
	start := time.Now()

	requested := NewStatSet(opts.Stats, logger)
	req := Resolve(requested, opts.Filter != nil)
	acc := newAccumulator(req, arith)
	g := newGate(arith, acc, opts.NoData, opts.Filter)

	logger.Debug("Computation configured",
		zap.Strings("stats", statNames(requested.Stats())),
		zap.Bool("precise", opts.Precise),
		zap.Bool("async", opts.Async),
		zap.Bool("chunked", opts.Chunked),
		zap.Bool("histogram", req.Histogram),
	)

	admit := g.admit
	if opts.Map != nil {
		project := opts.Map
		admit = func(raw any) { g.admit(project(raw)) }
	}

	for {
		item, ok, err := src.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceFailed, err)
		}
		if !ok {
			break
		}

		if opts.Async {
			if pending, isAwaitable := item.(Awaitable); isAwaitable {
				item, err = pending.Await(ctx)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrAwaitFailed, err)
				}
			}
		}

		if opts.Chunked {
			eachInBatch(item, admit)
		} else {
			admit(item)
		}
	}

	res := assemble(requested, acc, opts.PreciseMaxDecimalDigits)

	if opts.Timed {
		logger.Info("Statistics computed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("stats", len(res)),
			zap.Bool("precise", opts.Precise),
		)
	}
	return res, nil
}

// eachInBatch flattens one chunk. A non-slice item is a batch of one.
func eachInBatch(batch any, fn func(any)) {
	switch b := batch.(type) {
	case nil:
		return
	case []any:
		for _, v := range b {
			fn(v)
		}
	case []float64:
		for _, v := range b {
			fn(v)
		}
	case []int:
		for _, v := range b {
			fn(v)
		}
	case []string:
		for _, v := range b {
			fn(v)
		}
	default:
		rv := reflect.ValueOf(batch)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			fn(batch)
			return
		}
		for i := 0; i < rv.Len(); i++ {
			fn(rv.Index(i).Interface())
		}
	}
}

func statNames(stats []Stat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = string(s)
	}
	return out
}
