package stream

import (
	"io"

	"modernc.org/codec"
	"modernc.org/codec/alloc"
)

// HostWriter is a Writer backed by an ordinary growable Go slice, for
// callers with no scratch allocator attached to their Context.
type HostWriter struct {
	buf []byte
}

// NewHostWriter returns an empty HostWriter.
func NewHostWriter() *HostWriter { return &HostWriter{} }

func (w *HostWriter) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

func (w *HostWriter) Write(p []byte) error {
	w.buf = append(w.buf, p...)
	return nil
}

// Bytes returns the accumulated output.
func (w *HostWriter) Bytes() []byte { return w.buf }

// SliceWriter is a Writer backed by a Region carved out of an
// alloc.Slice, growing geometrically exactly as lldb.MemFiler grows its
// page list on demand.
type SliceWriter struct {
	region *alloc.Region
	length int
}

const sliceWriterInitialCap = 64

// NewSliceWriter carves an initial region out of a, growing it as bytes
// are written.
func NewSliceWriter(a *alloc.Slice) (*SliceWriter, error) {
	r, ok := a.Alloc(sliceWriterInitialCap, 1)
	if !ok {
		return nil, &codec.Error{Type: codec.AllocError, Msg: "stream: initial region allocation failed"}
	}
	return &SliceWriter{region: r}, nil
}

func (w *SliceWriter) ensure(additional int) error {
	need := w.length + additional
	if w.region.Cap() >= need {
		return nil
	}
	grow := w.region.Cap() * 2
	if grow < need {
		grow = need
	}
	if !w.region.Resize(w.length, grow-w.length) {
		return &codec.Error{Type: codec.AllocError, Msg: "stream: region growth failed"}
	}
	return nil
}

func (w *SliceWriter) WriteByte(b byte) error {
	if err := w.ensure(1); err != nil {
		return err
	}
	w.region.Bytes()[w.length] = b
	w.length++
	return nil
}

func (w *SliceWriter) Write(p []byte) error {
	if err := w.ensure(len(p)); err != nil {
		return err
	}
	copy(w.region.Bytes()[w.length:], p)
	w.length += len(p)
	return nil
}

// Bytes returns the written prefix of the underlying region.
func (w *SliceWriter) Bytes() []byte { return w.region.Bytes()[:w.length] }

// Free releases the underlying region. The SliceWriter must not be used
// afterwards.
func (w *SliceWriter) Free() { w.region.Free() }

// ioWriter adapts an io.Writer as a codec.Writer, for streaming output
// that should not be buffered wholesale in memory.
type ioWriter struct {
	dst io.Writer
	one [1]byte
}

// NewIOWriter wraps dst as a codec.Writer.
func NewIOWriter(dst io.Writer) codec.Writer {
	return &ioWriter{dst: dst}
}

func (w *ioWriter) WriteByte(b byte) error {
	w.one[0] = b
	_, err := w.dst.Write(w.one[:])
	return err
}

func (w *ioWriter) Write(p []byte) error {
	_, err := w.dst.Write(p)
	return err
}
