package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/carlodf/roastetl/connector"
)

type decodeMapTransform[T any] struct {
	decoder Decoder
}

// NewDecodeMapTransform returns a Transformer[T] that decodes with decoder
// and maps every document with the Mapper passed to Transform.
func NewDecodeMapTransform[T any](decoder Decoder) Transformer[T] {
	if decoder == nil {
		panic("NewDecodeMapTransform: decoder is nil")
	}
	return &decodeMapTransform[T]{decoder: decoder}
}

func (t *decodeMapTransform[T]) Transform(ctx context.Context, seq *connector.Sequence, mapFn Mapper[T]) (StructIterator[T], error) {
	if mapFn == nil {
		return nil, errors.New("transform: nil Mapper")
	}
	docs, err := t.decoder.Decode(ctx, seq)
	if err != nil {
		return nil, err
	}
	return &mapIterator[T]{ctx: ctx, docs: docs, fn: mapFn}, nil
}

// mapIterator stops at the first mapper error or context cancellation.
type mapIterator[T any] struct {
	ctx  context.Context
	docs DocumentIterator
	fn   Mapper[T]

	val     T
	err     error
	stopped bool
}

func (it *mapIterator[T]) Next() bool {
	if it.stopped {
		return false
	}
	if err := it.ctx.Err(); err != nil {
		return it.stop(err)
	}
	if !it.docs.Next() {
		return it.stop(nil)
	}
	doc := it.docs.Document()
	v, err := it.fn(doc)
	if err != nil {
		return it.stop(fmt.Errorf("map %s: %w", doc.Name(), err))
	}
	it.val = v
	return true
}

func (it *mapIterator[T]) stop(err error) bool {
	var zero T
	it.val = zero
	it.err = err
	it.stopped = true
	return false
}

func (it *mapIterator[T]) Struct() T { return it.val }

func (it *mapIterator[T]) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.docs.Err()
}

func (it *mapIterator[T]) Close() error {
	it.stopped = true
	return it.docs.Close()
}
