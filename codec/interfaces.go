package codec

// SizeHint advises a sequence or map encoder how many elements will be
// written, so formats that need an up-front length prefix can emit one.
// A hint of Exact(-1) (use HintAny) means the count is not known and the
// format must self-terminate instead.
type SizeHint int

// HintAny indicates an unknown element count.
const HintAny SizeHint = -1

// Exact reports whether the hint names a known element count.
func (h SizeHint) Exact() (int, bool) {
	if h < 0 {
		return 0, false
	}
	return int(h), true
}

// Encode is implemented by any value that can write itself through an
// Encoder. Hand-written implementations on fixture types stand in for
// the out-of-scope derive layer.
type Encode interface {
	EncodeTo(c *Context, e Encoder) error
}

// Decode is implemented by any value that can populate itself from a
// Decoder.
type Decode interface {
	DecodeFrom(c *Context, d Decoder) error
}

// TryFastResult is the outcome of Encoder.TryFastEncode /
// Decoder.TryFastDecode.
type TryFastResult int

const (
	// FastOK means the bitwise copy was performed; no further
	// encoding of the value is necessary.
	FastOK TryFastResult = iota
	// FastUnsupported means the format or options do not support the
	// bitwise fast path for this call; the caller must fall back to
	// the ordinary per-field encoding.
	FastUnsupported
)

// SkipResult is the outcome of Decoder.TrySkip.
type SkipResult int

const (
	// Skipped means the decoder consumed and discarded the value.
	Skipped SkipResult = iota
	// SkipUnsupported means this format cannot skip without decoding;
	// the caller must decode_any and discard the result instead.
	SkipUnsupported
)

// Encoder is the polymorphic, visitor-style write surface every format
// driver implements. Methods return an error rather than panicking; a
// single concrete struct per format (storage.Encoder, wire.Encoder,
// json.Encoder, value.Encoder) satisfies this interface.
type Encoder interface {
	EncodeBool(c *Context, v bool) error
	EncodeChar(c *Context, v rune) error
	EncodeU8(c *Context, v uint8) error
	EncodeU16(c *Context, v uint16) error
	EncodeU32(c *Context, v uint32) error
	EncodeU64(c *Context, v uint64) error
	EncodeI8(c *Context, v int8) error
	EncodeI16(c *Context, v int16) error
	EncodeI32(c *Context, v int32) error
	EncodeI64(c *Context, v int64) error
	EncodeF32(c *Context, v float32) error
	EncodeF64(c *Context, v float64) error
	EncodeEmpty(c *Context) error

	EncodeBytes(c *Context, v []byte) error
	EncodeString(c *Context, v string) error
	EncodeArray(c *Context, v []byte) error

	EncodeSome(c *Context) (Encoder, error)
	EncodeNone(c *Context) error

	EncodePack(c *Context) (SequenceEncoder, error)
	EncodeSequence(c *Context, hint SizeHint) (SequenceEncoder, error)
	EncodeMap(c *Context, hint SizeHint) (MapEncoder, error)
	EncodeVariant(c *Context) (VariantEncoder, error)

	// TryFastEncode attempts the bitwise fast path for a layout
	// compatible slice of fixed-size elements. elemSize is the size in
	// bytes of one element; raw is the slice's contiguous bytes.
	TryFastEncode(c *Context, raw []byte, elemSize int) (TryFastResult, error)
}

// Decoder mirrors Encoder with decode_* operations, plus skip and
// self-describing decode via Visitor.
type Decoder interface {
	DecodeBool(c *Context) (bool, error)
	DecodeChar(c *Context) (rune, error)
	DecodeU8(c *Context) (uint8, error)
	DecodeU16(c *Context) (uint16, error)
	DecodeU32(c *Context) (uint32, error)
	DecodeU64(c *Context) (uint64, error)
	DecodeI8(c *Context) (int8, error)
	DecodeI16(c *Context) (int16, error)
	DecodeI32(c *Context) (int32, error)
	DecodeI64(c *Context) (int64, error)
	DecodeF32(c *Context) (float32, error)
	DecodeF64(c *Context) (float64, error)
	DecodeEmpty(c *Context) error

	DecodeBytes(c *Context) ([]byte, error)
	DecodeString(c *Context) (string, error)
	DecodeArray(c *Context, n int) ([]byte, error)

	// DecodeOption reports whether a value is present; if so the
	// returned Decoder reads it.
	DecodeOption(c *Context) (Decoder, bool, error)

	DecodePack(c *Context) (SequenceDecoder, error)
	DecodeSequence(c *Context) (SequenceDecoder, error)
	DecodeMap(c *Context) (MapDecoder, error)
	DecodeVariant(c *Context) (VariantDecoder, error)

	// TryFastDecode mirrors Encoder.TryFastEncode: it attempts the
	// bitwise fast path for a layout compatible slice of fixed-size
	// elements, reading len(raw) bytes into raw directly.
	TryFastDecode(c *Context, raw []byte, elemSize int) (TryFastResult, error)

	// Skip discards the next value outright.
	Skip(c *Context) error
	// TrySkip attempts a cheap skip without full decode; callers fall
	// back to DecodeAny-and-discard on SkipUnsupported.
	TrySkip(c *Context) (SkipResult, error)

	// DecodeAny drives visitor with whichever leaf method matches the
	// next value's shape, for self-describing formats (JSON, value).
	DecodeAny(c *Context, visitor Visitor) (any, error)

	// AsDecoder re-exposes a value already materialized by this
	// decoder (e.g. the value tree) as a fresh Decoder, so it can be
	// decoded again into a different target.
	AsDecoder(c *Context) (Decoder, error)
}

// Visitor is the double-dispatch callback for self-describing decode.
// Every method returns the caller's reconstructed value; methods the
// caller doesn't care about may return a zero value and a descriptive
// error, or simply ignore the callback's result type via `any`.
type Visitor interface {
	VisitUnit(c *Context) (any, error)
	VisitBool(c *Context, v bool) (any, error)
	VisitChar(c *Context, v rune) (any, error)
	VisitNumber(c *Context, v Number) (any, error)
	VisitBytes(c *Context, hint SizeHint, v []byte) (any, error)
	VisitString(c *Context, hint SizeHint, v string) (any, error)
	VisitSequence(c *Context, d SequenceDecoder) (any, error)
	VisitMap(c *Context, d MapDecoder) (any, error)
	VisitVariant(c *Context, d VariantDecoder) (any, error)
	VisitOption(c *Context, present bool, d Decoder) (any, error)
}

// NumberKind distinguishes the scalar payload of a Number.
type NumberKind int

const (
	NumU64 NumberKind = iota
	NumI64
	NumF64
)

// Number is a self-describing scalar, used by Visitor.VisitNumber and
// the value tree.
type Number struct {
	Kind NumberKind
	U64  uint64
	I64  int64
	F64  float64
}

// SequenceEncoder writes a homogeneous run of elements.
type SequenceEncoder interface {
	EncodeNext(c *Context) (Encoder, error)
	FinishSequence(c *Context) error
}

// SequenceDecoder reads a homogeneous run of elements until exhausted.
type SequenceDecoder interface {
	// TryDecodeNext returns (nil, false, nil) once the sequence is
	// exhausted.
	TryDecodeNext(c *Context) (Decoder, bool, error)
	SizeHint(c *Context) SizeHint
	// FinishSequence discards any elements the caller didn't decode,
	// so a later, unrelated read from the same stream doesn't see the
	// undecoded remainder. Callers that decode every element to
	// exhaustion may still call it; it is then a no-op. The storage
	// format cannot skip an element without knowing its shape, so its
	// sequence decoder returns an error instead when elements remain.
	FinishSequence(c *Context) error
}

// MapEncoder writes a run of key/value pairs.
type MapEncoder interface {
	EncodeEntry(c *Context) (key Encoder, value Encoder, err error)
	FinishMap(c *Context) error
}

// MapDecoder reads a run of key/value pairs until exhausted.
type MapDecoder interface {
	TryDecodeEntry(c *Context) (key Decoder, value Decoder, ok bool, err error)
	SizeHint(c *Context) SizeHint
	// FinishMap discards any entries the caller didn't decode, the map
	// counterpart to SequenceDecoder.FinishSequence. A derived struct
	// decoding only the fields it recognizes calls this once it has
	// seen every field it knows about, so the unrecognized remainder
	// never corrupts whatever follows in the stream. As with
	// FinishSequence, the storage format returns an error instead when
	// entries remain.
	FinishMap(c *Context) error
}

// VariantEncoder writes an enum tag followed by its payload.
type VariantEncoder interface {
	EncodeTag(c *Context) (Encoder, error)
	EncodeValue(c *Context) (Encoder, error)
	FinishVariant(c *Context) error
}

// VariantDecoder reads an enum tag followed by its payload.
type VariantDecoder interface {
	DecodeTag(c *Context) (Decoder, error)
	DecodeValue(c *Context) (Decoder, error)
}

// Reader is the byte source every format decodes from.
type Reader interface {
	// IsEOF reports whether the reader has no more bytes.
	IsEOF() bool
	// Peek returns the next byte without consuming it.
	Peek() (byte, bool)
	// ReadByte consumes and returns one byte.
	ReadByte() (byte, error)
	// Read consumes exactly len(p) bytes into p.
	Read(p []byte) error
	// Skip discards n bytes without copying them out.
	Skip(n int) error
	// Limit returns a bounded view over the next n bytes; reads past
	// that many bytes fail with EndOfInput, and Peek past the limit
	// returns (0, false) rather than seeing into the parent reader.
	Limit(n int) Reader
	// Mark returns the reader's current absolute position.
	Mark() Mark
}

// Writer is the byte sink every format encodes to.
type Writer interface {
	WriteByte(b byte) error
	Write(p []byte) error
}
