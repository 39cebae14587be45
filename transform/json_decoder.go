package transform

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/carlodf/roastetl/connector"
	"github.com/carlodf/roastetl/roast"
)

// DefaultMaxDocumentBytes bounds the size of a single roast document.
const DefaultMaxDocumentBytes = 64 << 20

// ErrDocumentTooLarge is returned for a source larger than the configured
// limit.
var ErrDocumentTooLarge = errors.New("roast document too large")

// JSONDecoderOptions configures NewJSONDecoder.
//
// SkipInvalid selects the policy for sources that are not roast documents
// (malformed JSON, not an object, too large): when false the first such
// source ends iteration with an error; when true it is reported to
// OnSkip and iteration continues. Open and read failures always end
// iteration.
//
// OnLoad, when set, is called with each source name before it is read.
type JSONDecoderOptions struct {
	SkipInvalid      bool
	MaxDocumentBytes int64
	OnLoad           func(name string)
	OnSkip           func(name string, err error)
}

// NewJSONDecoder returns a Decoder that parses every source as exactly
// one JSON roast document.
func NewJSONDecoder(opt JSONDecoderOptions) Decoder {
	if opt.MaxDocumentBytes <= 0 {
		opt.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	return &jsonDecoder{opt: opt}
}

type jsonDecoder struct {
	opt JSONDecoderOptions
}

// Decode returns an iterator yielding one document per source in seq.
// The iterator is not safe for concurrent use.
func (d *jsonDecoder) Decode(ctx context.Context, seq *connector.Sequence) (DocumentIterator, error) {
	if seq == nil {
		return nil, fmt.Errorf("transform: sequence must not be nil")
	}
	return &documentIterator{ctx: ctx, seq: seq, opt: d.opt}, nil
}

type documentIterator struct {
	ctx context.Context
	seq *connector.Sequence
	opt JSONDecoderOptions

	cur  *roast.Document
	err  error
	done bool
}

func (it *documentIterator) Next() bool {
	if it.done {
		return false
	}
	for {
		if err := it.ctx.Err(); err != nil {
			return it.fail(err)
		}
		if !it.seq.Next() {
			return it.fail(it.seq.Err())
		}
		stream := it.seq.Stream()
		name := stream.Current().Name
		if it.opt.OnLoad != nil {
			it.opt.OnLoad(name)
		}

		doc, err := it.decode(stream, name)
		switch {
		case err == nil:
			it.cur = doc
			return true
		case it.opt.SkipInvalid && isInvalidDocument(err):
			if it.opt.OnSkip != nil {
				it.opt.OnSkip(name, err)
			}
		default:
			return it.fail(err)
		}
	}
}

func (it *documentIterator) decode(stream connector.SrcAwareStreamer, name string) (*roast.Document, error) {
	limit := it.opt.MaxDocumentBytes
	data, err := io.ReadAll(io.LimitReader(stream, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrDocumentTooLarge, name, limit)
	}
	return roast.ParseDocument(name, data)
}

func isInvalidDocument(err error) bool {
	return errors.Is(err, roast.ErrInvalidDocument) || errors.Is(err, ErrDocumentTooLarge)
}

func (it *documentIterator) fail(err error) bool {
	it.err = err
	it.cur = nil
	it.done = true
	return false
}

func (it *documentIterator) Document() *roast.Document { return it.cur }

func (it *documentIterator) Err() error { return it.err }

func (it *documentIterator) Close() error {
	it.done = true
	return it.seq.Close()
}
