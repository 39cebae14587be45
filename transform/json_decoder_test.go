package transform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/carlodf/roastetl/connector"
	"github.com/carlodf/roastetl/opener"
	"github.com/carlodf/roastetl/roast"
)

func memSeq(srcs ...opener.InMemorySource) *connector.Sequence {
	ops := make([]opener.Opener, len(srcs))
	for i, s := range srcs {
		ops[i] = s
	}
	return connector.NewSequence(context.Background(), ops)
}

func mem(name, data string) opener.InMemorySource {
	return opener.InMemorySource{SourceName: name, Data: []byte(data)}
}

func collect(t *testing.T, it DocumentIterator) []string {
	t.Helper()
	var names []string
	for it.Next() {
		names = append(names, it.Document().Name())
	}
	return names
}

func TestJSONDecoder_OneDocumentPerSource(t *testing.T) {
	t.Parallel()
	var loaded []string
	dec := NewJSONDecoder(JSONDecoderOptions{OnLoad: func(name string) { loaded = append(loaded, name) }})

	it, err := dec.Decode(context.Background(), memSeq(
		mem("a.json", `{"beanId": "a"}`),
		mem("b.json", "  {\"beanId\": \"b\"}\n"),
	))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer it.Close()

	names := collect(t, it)
	if err := it.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if strings.Join(names, ",") != "a.json,b.json" {
		t.Fatalf("documents = %v", names)
	}
	if strings.Join(loaded, ",") != "a.json,b.json" {
		t.Fatalf("OnLoad saw %v", loaded)
	}
}

func TestJSONDecoder_InvalidDocumentAbortsByDefault(t *testing.T) {
	t.Parallel()
	it, err := NewJSONDecoder(JSONDecoderOptions{}).Decode(context.Background(), memSeq(
		mem("a.json", `{}`),
		mem("broken.json", `{"beanId": `),
		mem("c.json", `{}`),
	))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer it.Close()

	names := collect(t, it)
	if len(names) != 1 {
		t.Fatalf("documents before failure = %v", names)
	}
	if !errors.Is(it.Err(), roast.ErrInvalidDocument) {
		t.Fatalf("Err() = %v, want ErrInvalidDocument", it.Err())
	}
	if !strings.Contains(it.Err().Error(), "broken.json") {
		t.Fatalf("error does not name the source: %v", it.Err())
	}
}

func TestJSONDecoder_SkipInvalid(t *testing.T) {
	t.Parallel()
	skipped := map[string]error{}
	dec := NewJSONDecoder(JSONDecoderOptions{
		SkipInvalid:      true,
		MaxDocumentBytes: 32,
		OnSkip:           func(name string, err error) { skipped[name] = err },
	})
	it, err := dec.Decode(context.Background(), memSeq(
		mem("array.json", `[1, 2, 3]`),
		mem("a.json", `{}`),
		mem("huge.json", `{"roastName": "`+strings.Repeat("x", 64)+`"}`),
		mem("b.json", `{"x": 1}`),
	))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer it.Close()

	names := collect(t, it)
	if err := it.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if strings.Join(names, ",") != "a.json,b.json" {
		t.Fatalf("documents = %v", names)
	}
	if !errors.Is(skipped["array.json"], roast.ErrInvalidDocument) {
		t.Fatalf("array.json skip reason = %v", skipped["array.json"])
	}
	if !errors.Is(skipped["huge.json"], ErrDocumentTooLarge) {
		t.Fatalf("huge.json skip reason = %v", skipped["huge.json"])
	}
}

func TestJSONDecoder_NilSequence(t *testing.T) {
	t.Parallel()
	if _, err := NewJSONDecoder(JSONDecoderOptions{}).Decode(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil sequence")
	}
}

func TestJSONDecoder_CanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	it, err := NewJSONDecoder(JSONDecoderOptions{}).Decode(ctx, memSeq(mem("a.json", `{}`)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer it.Close()
	cancel()
	if it.Next() {
		t.Fatalf("Next after cancel should be false")
	}
	if !errors.Is(it.Err(), context.Canceled) {
		t.Fatalf("Err() = %v", it.Err())
	}
}

func TestDecodeMapTransform_WithJSONDecoder(t *testing.T) {
	t.Parallel()
	b := roast.NewBuilder(roast.NewTable(roast.DirectField("beanId")))
	tr := NewDecodeMapTransform[roast.Record](NewJSONDecoder(JSONDecoderOptions{}))

	it, err := tr.Transform(context.Background(), memSeq(mem("a.json", `{"beanId": "kenya"}`)),
		func(d *roast.Document) (roast.Record, error) {
			rec, _ := b.Build(d)
			return rec, nil
		})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	defer it.Close()

	if !it.Next() {
		t.Fatalf("Next: %v", it.Err())
	}
	if v, _ := it.Struct().Get("beanId"); v.String() != "kenya" {
		t.Fatalf("beanId = %q", v)
	}
}
