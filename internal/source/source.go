// Package source adapts in-memory collections, readers and Kafka topics into
// pull-style iterators for the statistics engine.
package source

import (
	"context"
	"fmt"
	"iter"
	"reflect"
)

// Iterator yields raw items. ok is false once the stream is exhausted.
type Iterator interface {
	Next(ctx context.Context) (item any, ok bool, err error)
}

// Stream is an Iterator holding resources that must be released.
type Stream interface {
	Iterator
	Close() error
}

type sliceIter[T any] struct {
	items []T
	pos   int
}

// FromSlice iterates over items in order.
func FromSlice[T any](items []T) Iterator {
	return &sliceIter[T]{items: items}
}

func (s *sliceIter[T]) Next(context.Context) (any, bool, error) {
	if s.pos >= len(s.items) {
		return nil, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

type seqIter struct {
	next func() (any, bool)
	stop func()
	done bool
}

// FromSeq pulls values from a range-over-func sequence. Close releases the
// sequence if the stream is abandoned before it ends.
func FromSeq(seq iter.Seq[any]) Stream {
	next, stop := iter.Pull(seq)
	return &seqIter{next: next, stop: stop}
}

func (s *seqIter) Next(context.Context) (any, bool, error) {
	if s.done {
		return nil, false, nil
	}
	v, ok := s.next()
	if !ok {
		s.done = true
		s.stop()
		return nil, false, nil
	}
	return v, true, nil
}

func (s *seqIter) Close() error {
	s.done = true
	s.stop()
	return nil
}

type chanIter struct {
	ch <-chan any
}

// FromChannel receives items until ch is closed. Each receive blocks and
// gives up when ctx is done.
func FromChannel(ch <-chan any) Iterator {
	return chanIter{ch: ch}
}

func (c chanIter) Next(ctx context.Context) (any, bool, error) {
	select {
	case v, ok := <-c.ch:
		return v, ok, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

type reflectIter struct {
	v   reflect.Value
	pos int
}

func (r *reflectIter) Next(ctx context.Context) (any, bool, error) {
	if r.v.Kind() == reflect.Chan {
		chosen, v, ok := reflect.Select([]reflect.SelectCase{
			{Dir: reflect.SelectRecv, Chan: r.v},
			{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())},
		})
		if chosen == 1 {
			return nil, false, ctx.Err()
		}
		if !ok {
			return nil, false, nil
		}
		return v.Interface(), true, nil
	}
	if r.pos >= r.v.Len() {
		return nil, false, nil
	}
	v := r.v.Index(r.pos).Interface()
	r.pos++
	return v, true, nil
}

// From picks an iterator for data: an Iterator as is, any slice or array,
// an iter.Seq, or a receive-capable channel. Anything else fails with
// ErrNoIterator.
func From(data any) (Iterator, error) {
	switch d := data.(type) {
	case nil:
		return nil, ErrNoIterator
	case Iterator:
		return d, nil
	case iter.Seq[any]:
		return FromSeq(d), nil
	case func(yield func(any) bool):
		return FromSeq(d), nil
	case <-chan any:
		return FromChannel(d), nil
	case chan any:
		return FromChannel(d), nil
	case []any:
		return FromSlice(d), nil
	case []float64:
		return FromSlice(d), nil
	case []int:
		return FromSlice(d), nil
	case []string:
		return FromSlice(d), nil
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return &reflectIter{v: rv}, nil
	case reflect.Chan:
		if rv.Type().ChanDir()&reflect.RecvDir == 0 {
			return nil, fmt.Errorf("%w: send-only channel %T", ErrNoIterator, data)
		}
		return &reflectIter{v: rv}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNoIterator, data)
	}
}
