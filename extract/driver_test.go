package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/carlodf/roastetl/opener"
	"github.com/carlodf/roastetl/roast"
)

func newBuilder() *roast.Builder {
	return roast.NewBuilder(roast.DefaultTable(), roast.WithLocation(time.UTC))
}

func roastJSON(i int) string {
	return fmt.Sprintf(`{
		"beanId": "bean-%d",
		"dateTime": %d,
		"sampleRate": 1,
		"roastStartIndex": 0,
		"roastEndIndex": %d,
		"beanTemperature": [100, 150, 200]
	}`, i, 1700000000000+int64(i)*86400000, i)
}

func memOpeners(n int) []opener.Opener {
	ops := make([]opener.Opener, n)
	for i := range ops {
		ops[i] = opener.InMemorySource{SourceName: fmt.Sprintf("r%02d.json", i), Data: []byte(roastJSON(i))}
	}
	return ops
}

func TestDriver_SequentialKeepsSourceOrder(t *testing.T) {
	t.Parallel()
	var loaded []string
	d := &Driver{Builder: newBuilder(), OnLoad: func(name string) { loaded = append(loaded, name) }}

	results, err := d.RunOpeners(context.Background(), memOpeners(5))
	if err != nil {
		t.Fatalf("RunOpeners: %v", err)
	}
	if len(results) != 5 || len(loaded) != 5 {
		t.Fatalf("got %d results, %d load callbacks", len(results), len(loaded))
	}
	for i, r := range results {
		if want := fmt.Sprintf("r%02d.json", i); r.Record.Source() != want {
			t.Fatalf("result %d source = %q, want %q", i, r.Record.Source(), want)
		}
		v, _ := r.Record.Get("beanId")
		if v.String() != fmt.Sprintf("bean-%d", i) {
			t.Fatalf("result %d beanId = %q", i, v)
		}
	}

	end, _ := results[4].Record.Get("roastEndBeantemperature")
	if end.String() != "200" {
		t.Fatalf("clamped end sample = %q", end)
	}
}

func TestDriver_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()
	seq := &Driver{Builder: newBuilder()}
	par := &Driver{Builder: newBuilder(), Workers: 4, Diagnostics: &roast.Diagnostics{}}

	want, err := seq.RunOpeners(context.Background(), memOpeners(20))
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	got, err := par.RunOpeners(context.Background(), memOpeners(20))
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("parallel returned %d results, want %d", len(got), len(want))
	}
	total := 0
	for i := range want {
		if !reflect.DeepEqual(got[i].Record.Values(), want[i].Record.Values()) {
			t.Fatalf("record %d differs between sequential and parallel runs", i)
		}
		if !reflect.DeepEqual(got[i].Diagnostics, want[i].Diagnostics) {
			t.Fatalf("diagnostics %d differ between sequential and parallel runs", i)
		}
		total += len(want[i].Diagnostics)
	}
	if par.Diagnostics.Len() != total {
		t.Fatalf("collector holds %d diagnostics, want %d", par.Diagnostics.Len(), total)
	}
}

func TestDriver_InvalidDocumentPolicy(t *testing.T) {
	t.Parallel()
	ops := []opener.Opener{
		opener.InMemorySource{SourceName: "ok.json", Data: []byte(roastJSON(1))},
		opener.InMemorySource{SourceName: "bad.json", Data: []byte("not json")},
		opener.InMemorySource{SourceName: "ok2.json", Data: []byte(roastJSON(2))},
	}

	for _, workers := range []int{1, 3} {
		abort := &Driver{Builder: newBuilder(), Workers: workers}
		if _, err := abort.RunOpeners(context.Background(), ops); !errors.Is(err, roast.ErrInvalidDocument) {
			t.Fatalf("workers=%d: expected ErrInvalidDocument, got %v", workers, err)
		}

		var skipped []string
		skip := &Driver{
			Builder:     newBuilder(),
			Workers:     workers,
			SkipInvalid: true,
			OnSkip:      func(name string, _ error) { skipped = append(skipped, name) },
		}
		results, err := skip.RunOpeners(context.Background(), ops)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if len(results) != 2 || len(skipped) != 1 || skipped[0] != "bad.json" {
			t.Fatalf("workers=%d: %d results, skipped %v", workers, len(results), skipped)
		}
	}
}

func TestDriver_RunDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for i := range 3 {
		p := filepath.Join(dir, fmt.Sprintf("roast-%d.json", i))
		if err := os.WriteFile(p, []byte(roastJSON(i)), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	results, err := (&Driver{Builder: newBuilder()}).Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if !strings.HasSuffix(results[2].Record.Source(), "roast-2.json") {
		t.Fatalf("last source = %q", results[2].Record.Source())
	}
	date, _ := results[1].Record.Get("date")
	if date.String() != "2023-11-15" {
		t.Fatalf("date = %q", date)
	}
}

func TestDriver_RunNoSources(t *testing.T) {
	t.Parallel()
	_, err := (&Driver{Builder: newBuilder()}).Run(context.Background(), t.TempDir())
	if !errors.Is(err, opener.ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}
