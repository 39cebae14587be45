// Package transform turns a sequence of roast sources into parsed
// documents, and documents into typed values.
//
// The pipeline is:
//
//	connector.Sequence (one byte stream per source)
//	  → Decoder (DocumentIterator of *roast.Document)
//	  → Mapper[T] (one T per document, e.g. a roast.Record)
//	  → StructIterator[T]
//
// Decoders own source-level policy (size limits, what to do with a file
// that is not a roast document); mappers own the per-document schema.
package transform

import (
	"context"

	"github.com/carlodf/roastetl/connector"
	"github.com/carlodf/roastetl/roast"
)

//
// Streaming iterators
//

// DocumentIterator is a forward-only iterator over parsed documents.
//
//	it, err := dec.Decode(ctx, seq)
//	if err != nil { ... }
//	defer it.Close()
//
//	for it.Next() {
//	    doc := it.Document()
//	}
//	if err := it.Err(); err != nil {
//	    // source or decode failure
//	}
type DocumentIterator interface {
	// Next advances to the next document. When it returns false, Err
	// distinguishes exhaustion from failure.
	Next() bool

	// Document returns the current document. Only valid after Next has
	// returned true.
	Document() *roast.Document

	// Err returns the terminal error, or nil after clean exhaustion.
	Err() error

	// Close releases the underlying sources. Safe to call more than once
	// and before exhaustion.
	Close() error
}

// StructIterator is a forward-only iterator over values produced by a
// Mapper. Its contract mirrors DocumentIterator.
type StructIterator[T any] interface {
	Next() bool
	Struct() T
	Err() error
	Close() error
}

//
// Decoder
//

// Decoder turns a sequence of sources into documents. Configuration is
// fixed at construction time.
type Decoder interface {
	// Decode returns an iterator that owns seq and closes it.
	Decode(ctx context.Context, seq *connector.Sequence) (DocumentIterator, error)
}

//
// Mapper and Transformer
//

// Mapper converts one document into a T.
type Mapper[T any] func(*roast.Document) (T, error)

// Transformer composes a Decoder with a Mapper.
type Transformer[T any] interface {
	// Transform decodes seq and applies mapFn to every document. The
	// returned iterator owns seq.
	Transform(ctx context.Context, seq *connector.Sequence, mapFn Mapper[T]) (StructIterator[T], error)
}
