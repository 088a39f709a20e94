package source

import "context"

// Deferred is an item whose value is produced on demand. The engine awaits
// it only in async mode.
type Deferred func(ctx context.Context) (any, error)

// Await runs the deferred computation.
func (d Deferred) Await(ctx context.Context) (any, error) {
	return d(ctx)
}

// Resolved wraps an already known value.
func Resolved(v any) Deferred {
	return func(context.Context) (any, error) { return v, nil }
}

// Rejected wraps a failure.
func Rejected(err error) Deferred {
	return func(context.Context) (any, error) { return nil, err }
}

// Later delivers the single value sent on ch, honoring ctx while waiting.
func Later(ch <-chan any) Deferred {
	return func(ctx context.Context) (any, error) {
		select {
		case v := <-ch:
			return v, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
