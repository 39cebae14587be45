package connector

import (
	"io"
)

// SrcMeta describes the position of a stream within its source.
// Name identifies the source (the Opener's Name); ByteOffset counts the
// bytes handed to the reader so far.
type SrcMeta struct {
	Name       string
	ByteOffset int64
}

// SrcAwareStreamer is a byte stream that knows which source it reads.
type SrcAwareStreamer interface {
	io.ReadCloser
	Current() SrcMeta
}
