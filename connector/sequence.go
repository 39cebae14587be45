// Package connector streams roast sources one after the other, keeping
// track of which source and byte offset the reader is at.
package connector

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/carlodf/roastetl/opener"
)

// Sequence walks a list of openers. At most one underlying source is open
// at a time: Next closes the previous stream before opening the next one.
//
//	seq := connector.NewSequence(ctx, ops)
//	defer seq.Close()
//	for seq.Next() {
//	    s := seq.Stream()
//	    // read s, s.Current().Name identifies the source
//	}
//	if err := seq.Err(); err != nil { ... }
//
// A source that fails to open stops the walk; Err reports it. Sequence is
// not safe for concurrent use.
type Sequence struct {
	ctx context.Context
	ops []opener.Opener

	pos    int
	cur    *sourceStream
	err    error
	closed bool
}

// NewSequence returns a Sequence over ops. ctx governs every Open.
func NewSequence(ctx context.Context, ops []opener.Opener) *Sequence {
	return &Sequence{ctx: ctx, ops: ops}
}

// Len returns the number of sources.
func (s *Sequence) Len() int { return len(s.ops) }

// Next closes the current stream and opens the next source. It returns
// false when the sources are exhausted, on an open error or after Close.
func (s *Sequence) Next() bool {
	s.closeCurrent()
	if s.closed || s.err != nil || s.pos >= len(s.ops) {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	op := s.ops[s.pos]
	s.pos++
	rc, err := op.Open(s.ctx)
	if err != nil {
		s.err = fmt.Errorf("open %s: %w", op.Name(), err)
		return false
	}
	s.cur = &sourceStream{rc: rc, name: op.Name()}
	return true
}

// Stream returns the stream opened by the last successful Next. It stays
// valid until the next call to Next or Close.
func (s *Sequence) Stream() SrcAwareStreamer {
	if s.cur == nil {
		return nil
	}
	return s.cur
}

// Err returns the first open error, or nil.
func (s *Sequence) Err() error { return s.err }

// Close closes the current stream. It is safe to call more than once.
func (s *Sequence) Close() error {
	s.closed = true
	return s.closeCurrent()
}

func (s *Sequence) closeCurrent() error {
	if s.cur == nil {
		return nil
	}
	err := s.cur.Close()
	s.cur = nil
	return err
}

// sourceStream counts bytes read from one source.
type sourceStream struct {
	rc     io.ReadCloser
	name   string
	offset atomic.Int64
	closed atomic.Bool
}

func (s *sourceStream) Read(p []byte) (int, error) {
	n, err := s.rc.Read(p)
	s.offset.Add(int64(n))
	if err != nil && err != io.EOF {
		err = fmt.Errorf("read %s: %w", s.name, err)
	}
	return n, err
}

func (s *sourceStream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.rc.Close()
}

func (s *sourceStream) Current() SrcMeta {
	return SrcMeta{Name: s.name, ByteOffset: s.offset.Load()}
}
