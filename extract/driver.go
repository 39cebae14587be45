// Package extract runs the roast field engine over a batch of sources.
package extract

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/carlodf/roastetl/connector"
	"github.com/carlodf/roastetl/opener"
	"github.com/carlodf/roastetl/roast"
	"github.com/carlodf/roastetl/transform"
)

// Result is the extraction outcome of one document.
type Result struct {
	Record      roast.Record
	Diagnostics []roast.Diagnostic
}

// Driver extracts one Record per roast document.
//
// With Workers <= 1 documents are decoded and built one at a time. With
// more workers, documents are decoded sequentially and records are built
// concurrently; results keep source order either way.
type Driver struct {
	Builder *roast.Builder
	Workers int

	// SkipInvalid skips sources that are not roast documents instead of
	// failing the batch.
	SkipInvalid bool

	// Diagnostics, when set, additionally receives every diagnostic.
	Diagnostics *roast.Diagnostics

	OnLoad func(name string)
	OnSkip func(name string, err error)
}

// Run expands spec (a roast directory, glob or file URL) and extracts
// every document it names.
func (d *Driver) Run(ctx context.Context, spec string) ([]Result, error) {
	ops, err := opener.FromSpec(spec)
	if err != nil {
		return nil, err
	}
	return d.RunOpeners(ctx, ops)
}

// RunOpeners extracts every document served by ops.
func (d *Driver) RunOpeners(ctx context.Context, ops []opener.Opener) ([]Result, error) {
	if d.Builder == nil {
		panic("extract: Driver.Builder is nil")
	}
	seq := connector.NewSequence(ctx, ops)
	dec := transform.NewJSONDecoder(transform.JSONDecoderOptions{
		SkipInvalid: d.SkipInvalid,
		OnLoad:      d.OnLoad,
		OnSkip:      d.OnSkip,
	})
	if d.Workers <= 1 {
		return d.runSequential(ctx, dec, seq)
	}
	return d.runParallel(ctx, dec, seq)
}

func (d *Driver) runSequential(ctx context.Context, dec transform.Decoder, seq *connector.Sequence) ([]Result, error) {
	tr := transform.NewDecodeMapTransform[Result](dec)
	it, err := tr.Transform(ctx, seq, d.extract)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	results := make([]Result, 0, seq.Len())
	for it.Next() {
		results = append(results, it.Struct())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Driver) runParallel(ctx context.Context, dec transform.Decoder, seq *connector.Sequence) ([]Result, error) {
	it, err := dec.Decode(ctx, seq)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	docs := make([]*roast.Document, 0, seq.Len())
	for it.Next() {
		docs = append(docs, it.Document())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := d.extract(doc)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Driver) extract(doc *roast.Document) (Result, error) {
	rec, diags := d.Builder.Build(doc)
	if d.Diagnostics != nil {
		d.Diagnostics.Add(diags...)
	}
	return Result{Record: rec, Diagnostics: diags}, nil
}
