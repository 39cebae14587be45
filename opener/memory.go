package opener

import (
	"bytes"
	"context"
	"io"
)

// InMemorySource serves a document held in memory. It lets tests and
// synthetic batches feed the extraction pipeline without temporary files.
//
//	srcs := []opener.Opener{
//	    opener.InMemorySource{SourceName: "a.json", Data: []byte(`{"beanId":"x"}`)},
//	}
type InMemorySource struct {
	SourceName string
	Data       []byte
}

// Open returns a reader over Data. Each call gets an independent reader.
func (s InMemorySource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// Name returns SourceName.
func (s InMemorySource) Name() string { return s.SourceName }
