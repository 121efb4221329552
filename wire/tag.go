// Package wire implements the tagged binary format: every value begins
// with a one-byte Tag describing its shape, which lets a decoder skip
// values it doesn't recognize without understanding their contents.
package wire

import (
	"modernc.org/codec"
	"modernc.org/codec/varint"
)

// Kind is the 3-bit tag category.
type Kind byte

const (
	// Prefix means the payload is exactly Data() (or a following
	// varint) raw bytes.
	Prefix Kind = iota
	// Mark is a lone tag with no payload; the encoder writes it for
	// empty (unit) values.
	Mark
	// Sequence means the payload is Data() (or a following varint)
	// sub-values, each with its own tag.
	Sequence
	// Continuation means the payload is a continuation-encoded
	// varint, embedded directly when it fits in 5 bits.
	Continuation
)

// sentinel is the embedded-value marker meaning "the real value follows
// as a varint" rather than being embedded in the tag byte itself.
const sentinel = 31

// Tag is the one-byte value/sequence/prefix header every wire value
// starts with: high 3 bits select Kind, low 5 bits either hold a small
// value directly (0..30) or the sentinel 31 meaning "read a varint".
type Tag byte

// NewTag packs kind and an embeddable small value (<31) into a Tag.
func NewTag(kind Kind, embedded int) Tag {
	if embedded < 0 || embedded >= sentinel {
		panic("wire: embedded value out of range, use NewTagVarint")
	}
	return Tag(byte(kind)<<5 | byte(embedded))
}

// NewTagVarint packs kind into a Tag with the sentinel marker, meaning
// the real value follows as a continuation varint.
func NewTagVarint(kind Kind) Tag {
	return Tag(byte(kind)<<5 | sentinel)
}

// Kind extracts the tag's 3-bit category.
func (t Tag) Kind() Kind { return Kind(byte(t) >> 5) }

// Data returns the embedded 5-bit value and true, or (0, false) if this
// tag uses the sentinel and a varint must be read separately.
func (t Tag) Data() (int, bool) {
	v := int(byte(t) & 0x1f)
	if v == sentinel {
		return 0, false
	}
	return v, true
}

func writeTag(c *codec.Context, w codec.Writer, kind Kind, n int) error {
	if n < sentinel {
		return c.Report(w.WriteByte(byte(NewTag(kind, n))))
	}
	if err := c.Report(w.WriteByte(byte(NewTagVarint(kind)))); err != nil {
		return err
	}
	return c.Report(w.Write(varint.AppendContinuation(nil, uint64(n))))
}

// readTag reads one tag byte and, if it uses the sentinel, the
// following varint, returning the resolved kind and value.
func readTag(c *codec.Context, r codec.Reader) (Kind, int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, c.Report(err)
	}
	tag := Tag(b)
	if v, ok := tag.Data(); ok {
		return tag.Kind(), v, nil
	}
	v, err := readVarint(c, r)
	if err != nil {
		return 0, 0, err
	}
	return tag.Kind(), int(v), nil
}

func readVarint(c *codec.Context, r codec.Reader) (uint64, error) {
	var out uint64
	var shift uint
	for i := 0; i < varint.MaxContinuationLen64; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, c.Report(err)
		}
		out |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return out, nil
		}
		shift += 7
	}
	return 0, c.Report(&codec.Error{Type: codec.Overflow, Msg: "wire: continuation sequence too long"})
}

// SkipAny consumes and discards the next tagged value, following
// spec.md's counter-based algorithm: Prefix(n) skips n bytes,
// Sequence(n) adds n sub-values to the work counter, Continuation
// consumes its varint if not embedded, Mark is a single tag with no
// payload.
func SkipAny(c *codec.Context, r codec.Reader) error {
	counter := 1
	for counter > 0 {
		kind, n, err := readTag(c, r)
		if err != nil {
			return err
		}
		counter--
		switch kind {
		case Prefix:
			if err := c.Report(r.Skip(n)); err != nil {
				return err
			}
		case Sequence:
			counter += n
		case Continuation:
			// n already consumed by readTag when not embedded; embedded
			// values need no further bytes.
		case Mark:
		}
	}
	return nil
}
