// Package storage implements the dense, tagless binary format: no type
// information is written to the wire, so encoder and decoder must agree
// on shape out of band (matching Go types, matching Options).
package storage

import (
	"math"

	"modernc.org/codec"
	"modernc.org/codec/varint"
)

func byteOrder(o codec.Options) varint.ByteOrder {
	if o.ByteOrder == codec.BigEndian {
		return varint.BigEndian
	}
	return varint.LittleEndian
}

func widthMax(width int) int {
	switch width {
	case 1:
		return 2
	case 2:
		return 3
	case 4:
		return 5
	default:
		return varint.MaxContinuationLen64
	}
}

func encodeUint(w codec.Writer, opts codec.Options, width int, v uint64) error {
	if opts.Integer == codec.Fixed {
		return w.Write(varint.AppendFixed64(nil, v, width, byteOrder(opts)))
	}
	return w.Write(varint.AppendContinuation(nil, v))
}

func decodeUint(c *codec.Context, r codec.Reader, opts codec.Options, width int) (uint64, error) {
	if opts.Integer == codec.Fixed {
		buf := make([]byte, width)
		if err := r.Read(buf); err != nil {
			return 0, c.Report(err)
		}
		v, err := varint.DecodeFixed64(buf, width, byteOrder(opts))
		if err != nil {
			return 0, c.Report(&codec.Error{Type: codec.EndOfInput, More: err})
		}
		return v, nil
	}
	return decodeContinuation(c, r, widthMax(width))
}

func decodeContinuation(c *codec.Context, r codec.Reader, maxBytes int) (uint64, error) {
	var out uint64
	var shift uint
	for i := 0; i < maxBytes; i++ {
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
	return 0, c.Report(&codec.Error{Type: codec.Overflow, Msg: "varint: continuation sequence too long"})
}

func encodeLen(w codec.Writer, opts codec.Options, n int) error {
	if opts.Length == codec.LengthFixed {
		return w.Write(varint.AppendFixed64(nil, uint64(n), 8, byteOrder(opts)))
	}
	return w.Write(varint.AppendContinuation(nil, uint64(n)))
}

func decodeLen(c *codec.Context, r codec.Reader, opts codec.Options) (int, error) {
	if opts.Length == codec.LengthFixed {
		buf := make([]byte, 8)
		if err := r.Read(buf); err != nil {
			return 0, c.Report(err)
		}
		v, _ := varint.DecodeFixed64(buf, 8, byteOrder(opts))
		return int(v), nil
	}
	v, err := decodeContinuation(c, r, varint.MaxContinuationLen64)
	return int(v), err
}

// Encoder implements codec.Encoder for the storage format.
type Encoder struct {
	w    codec.Writer
	opts codec.Options
}

// NewEncoder returns a storage Encoder writing to w under opts.
func NewEncoder(w codec.Writer, opts codec.Options) *Encoder {
	return &Encoder{w: w, opts: opts}
}

func (e *Encoder) EncodeBool(c *codec.Context, v bool) error {
	var b byte
	if v {
		b = 1
	}
	return c.Report(e.w.WriteByte(b))
}

func (e *Encoder) EncodeChar(c *codec.Context, v rune) error {
	return e.EncodeU32(c, uint32(v))
}

func (e *Encoder) EncodeU8(c *codec.Context, v uint8) error  { return e.encodeU(c, 1, uint64(v)) }
func (e *Encoder) EncodeU16(c *codec.Context, v uint16) error { return e.encodeU(c, 2, uint64(v)) }
func (e *Encoder) EncodeU32(c *codec.Context, v uint32) error { return e.encodeU(c, 4, uint64(v)) }
func (e *Encoder) EncodeU64(c *codec.Context, v uint64) error { return e.encodeU(c, 8, v) }

func (e *Encoder) EncodeI8(c *codec.Context, v int8) error   { return e.encodeI(c, 1, int64(v)) }
func (e *Encoder) EncodeI16(c *codec.Context, v int16) error { return e.encodeI(c, 2, int64(v)) }
func (e *Encoder) EncodeI32(c *codec.Context, v int32) error { return e.encodeI(c, 4, int64(v)) }
func (e *Encoder) EncodeI64(c *codec.Context, v int64) error { return e.encodeI(c, 8, v) }

func (e *Encoder) EncodeF32(c *codec.Context, v float32) error {
	return e.encodeU(c, 4, uint64(math.Float32bits(v)))
}

func (e *Encoder) EncodeF64(c *codec.Context, v float64) error {
	return e.encodeU(c, 8, math.Float64bits(v))
}

func (e *Encoder) EncodeEmpty(c *codec.Context) error { return nil }

func (e *Encoder) encodeU(c *codec.Context, width int, v uint64) error {
	return c.Report(encodeUint(e.w, e.opts, width, v))
}

func (e *Encoder) encodeI(c *codec.Context, width int, v int64) error {
	if e.opts.Integer == codec.Fixed {
		return c.Report(encodeUint(e.w, e.opts, width, uint64(v)))
	}
	return c.Report(encodeUint(e.w, e.opts, width, varint.ZigZag(v)))
}

func (e *Encoder) EncodeBytes(c *codec.Context, v []byte) error {
	if err := c.Report(encodeLen(e.w, e.opts, len(v))); err != nil {
		return err
	}
	return c.Report(e.w.Write(v))
}

func (e *Encoder) EncodeString(c *codec.Context, v string) error {
	return e.EncodeBytes(c, []byte(v))
}

func (e *Encoder) EncodeArray(c *codec.Context, v []byte) error {
	return c.Report(e.w.Write(v))
}

func (e *Encoder) EncodeSome(c *codec.Context) (codec.Encoder, error) {
	if err := c.Report(e.w.WriteByte(1)); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Encoder) EncodeNone(c *codec.Context) error {
	return c.Report(e.w.WriteByte(0))
}

func (e *Encoder) EncodePack(c *codec.Context) (codec.SequenceEncoder, error) {
	return &packEncoder{e: e}, nil
}

func (e *Encoder) EncodeSequence(c *codec.Context, hint codec.SizeHint) (codec.SequenceEncoder, error) {
	n, ok := hint.Exact()
	if !ok {
		return nil, c.Report(&codec.Error{Type: codec.BadLength, Msg: "storage: sequence requires an exact size hint"})
	}
	if err := c.Report(encodeLen(e.w, e.opts, n)); err != nil {
		return nil, err
	}
	return &seqEncoder{e: e}, nil
}

func (e *Encoder) EncodeMap(c *codec.Context, hint codec.SizeHint) (codec.MapEncoder, error) {
	n, ok := hint.Exact()
	if !ok {
		return nil, c.Report(&codec.Error{Type: codec.BadLength, Msg: "storage: map requires an exact size hint"})
	}
	if err := c.Report(encodeLen(e.w, e.opts, n)); err != nil {
		return nil, err
	}
	return &mapEncoder{e: e}, nil
}

func (e *Encoder) EncodeVariant(c *codec.Context) (codec.VariantEncoder, error) {
	return &variantEncoder{e: e}, nil
}

func (e *Encoder) TryFastEncode(c *codec.Context, raw []byte, elemSize int) (codec.TryFastResult, error) {
	if !e.opts.NativeFixed() {
		return codec.FastUnsupported, nil
	}
	if err := c.Report(e.w.Write(raw)); err != nil {
		return codec.FastUnsupported, err
	}
	return codec.FastOK, nil
}

type seqEncoder struct{ e *Encoder }

func (s *seqEncoder) EncodeNext(c *codec.Context) (codec.Encoder, error) { return s.e, nil }
func (s *seqEncoder) FinishSequence(c *codec.Context) error              { return nil }

type packEncoder struct{ e *Encoder }

func (p *packEncoder) EncodeNext(c *codec.Context) (codec.Encoder, error) { return p.e, nil }
func (p *packEncoder) FinishSequence(c *codec.Context) error              { return nil }

type mapEncoder struct{ e *Encoder }

func (m *mapEncoder) EncodeEntry(c *codec.Context) (codec.Encoder, codec.Encoder, error) {
	return m.e, m.e, nil
}
func (m *mapEncoder) FinishMap(c *codec.Context) error { return nil }

type variantEncoder struct{ e *Encoder }

func (v *variantEncoder) EncodeTag(c *codec.Context) (codec.Encoder, error)   { return v.e, nil }
func (v *variantEncoder) EncodeValue(c *codec.Context) (codec.Encoder, error) { return v.e, nil }
func (v *variantEncoder) FinishVariant(c *codec.Context) error                { return nil }

// Decoder implements codec.Decoder for the storage format.
type Decoder struct {
	r    codec.Reader
	opts codec.Options
}

// NewDecoder returns a storage Decoder reading from r under opts.
func NewDecoder(r codec.Reader, opts codec.Options) *Decoder {
	return &Decoder{r: r, opts: opts}
}

func (d *Decoder) DecodeBool(c *codec.Context) (bool, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return false, c.Report(err)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, c.Report(&codec.Error{Type: codec.BadBoolean, Msg: "storage: bad boolean byte"})
	}
}

func (d *Decoder) DecodeChar(c *codec.Context) (rune, error) {
	v, err := d.DecodeU32(c)
	if err != nil {
		return 0, err
	}
	r := rune(v)
	if r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
		return 0, c.Report(&codec.Error{Type: codec.BadCharacter, Msg: "storage: invalid code point"})
	}
	return r, nil
}

func (d *Decoder) DecodeU8(c *codec.Context) (uint8, error) {
	v, err := decodeUint(c, d.r, d.opts, 1)
	return uint8(v), err
}

func (d *Decoder) DecodeU16(c *codec.Context) (uint16, error) {
	v, err := decodeUint(c, d.r, d.opts, 2)
	return uint16(v), err
}

func (d *Decoder) DecodeU32(c *codec.Context) (uint32, error) {
	v, err := decodeUint(c, d.r, d.opts, 4)
	return uint32(v), err
}

func (d *Decoder) DecodeU64(c *codec.Context) (uint64, error) {
	return decodeUint(c, d.r, d.opts, 8)
}

func (d *Decoder) decodeI(c *codec.Context, width int) (int64, error) {
	v, err := decodeUint(c, d.r, d.opts, width)
	if err != nil {
		return 0, err
	}
	if d.opts.Integer == codec.Fixed {
		switch width {
		case 1:
			return int64(int8(v)), nil
		case 2:
			return int64(int16(v)), nil
		case 4:
			return int64(int32(v)), nil
		default:
			return int64(v), nil
		}
	}
	return varint.UnZigZag(v), nil
}

func (d *Decoder) DecodeI8(c *codec.Context) (int8, error) {
	v, err := d.decodeI(c, 1)
	return int8(v), err
}

func (d *Decoder) DecodeI16(c *codec.Context) (int16, error) {
	v, err := d.decodeI(c, 2)
	return int16(v), err
}

func (d *Decoder) DecodeI32(c *codec.Context) (int32, error) {
	v, err := d.decodeI(c, 4)
	return int32(v), err
}

func (d *Decoder) DecodeI64(c *codec.Context) (int64, error) {
	return d.decodeI(c, 8)
}

func (d *Decoder) DecodeF32(c *codec.Context) (float32, error) {
	v, err := decodeUint(c, d.r, d.opts, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

func (d *Decoder) DecodeF64(c *codec.Context) (float64, error) {
	v, err := decodeUint(c, d.r, d.opts, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (d *Decoder) DecodeEmpty(c *codec.Context) error { return nil }

func (d *Decoder) DecodeBytes(c *codec.Context) ([]byte, error) {
	n, err := decodeLen(c, d.r, d.opts)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := d.r.Read(buf); err != nil {
		return nil, c.Report(err)
	}
	return buf, nil
}

func (d *Decoder) DecodeString(c *codec.Context) (string, error) {
	b, err := d.DecodeBytes(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) DecodeArray(c *codec.Context, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := d.r.Read(buf); err != nil {
		return nil, c.Report(err)
	}
	return buf, nil
}

func (d *Decoder) DecodeOption(c *codec.Context) (codec.Decoder, bool, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, false, c.Report(err)
	}
	switch b {
	case 0:
		return nil, false, nil
	case 1:
		return d, true, nil
	default:
		return nil, false, c.Report(&codec.Error{Type: codec.ExpectedOption, Msg: "storage: bad option discriminant"})
	}
}

// DecodePack reads the pack's varint length, then bounds the rest of
// the decode to exactly that many bytes: reading past it fails with
// EndOfInput. Bytes left unread inside the bound stay in the parent
// reader unless FinishSequence drains them.
func (d *Decoder) DecodePack(c *codec.Context) (codec.SequenceDecoder, error) {
	n, err := decodeLen(c, d.r, d.opts)
	if err != nil {
		return nil, err
	}
	bounded := &Decoder{r: d.r.Limit(n), opts: d.opts}
	return &packDecoder{d: bounded}, nil
}

type packDecoder struct{ d *Decoder }

func (p *packDecoder) TryDecodeNext(c *codec.Context) (codec.Decoder, bool, error) {
	if p.d.r.IsEOF() {
		return nil, false, nil
	}
	return p.d, true, nil
}

func (p *packDecoder) SizeHint(c *codec.Context) codec.SizeHint { return codec.HintAny }

// FinishSequence drains whatever bytes remain inside the pack's bound,
// which is all Reader.Limit needs to stay correct for the caller that
// reads past the pack: the bound itself already fixes how many bytes
// belong to it, so no element shape is required to skip them.
func (p *packDecoder) FinishSequence(c *codec.Context) error {
	for !p.d.r.IsEOF() {
		if _, err := p.d.r.ReadByte(); err != nil {
			return c.Report(err)
		}
	}
	return nil
}

func (d *Decoder) DecodeSequence(c *codec.Context) (codec.SequenceDecoder, error) {
	n, err := decodeLen(c, d.r, d.opts)
	if err != nil {
		return nil, err
	}
	return &seqDecoder{d: d, remaining: n}, nil
}

func (d *Decoder) DecodeMap(c *codec.Context) (codec.MapDecoder, error) {
	n, err := decodeLen(c, d.r, d.opts)
	if err != nil {
		return nil, err
	}
	return &mapDecoder{d: d, remaining: n}, nil
}

func (d *Decoder) DecodeVariant(c *codec.Context) (codec.VariantDecoder, error) {
	return &variantDecoder{d: d}, nil
}

func (d *Decoder) Skip(c *codec.Context) error {
	return c.Report(&codec.Error{Type: codec.BadTag, Msg: "storage: skip requires knowing the value's shape out of band"})
}

func (d *Decoder) TrySkip(c *codec.Context) (codec.SkipResult, error) {
	return codec.SkipUnsupported, nil
}

func (d *Decoder) DecodeAny(c *codec.Context, visitor codec.Visitor) (any, error) {
	return nil, c.Report(&codec.Error{Type: codec.BadTag, Msg: "storage: not self-describing"})
}

func (d *Decoder) AsDecoder(c *codec.Context) (codec.Decoder, error) { return d, nil }

// maxFastChunk bounds each Read call TryFastDecode issues, matching
// TryFastEncode's single-write counterpart but split so no one read
// is asked to fill an unbounded buffer.
const maxFastChunk = 65536

func (d *Decoder) TryFastDecode(c *codec.Context, raw []byte, elemSize int) (codec.TryFastResult, error) {
	if !d.opts.NativeFixed() {
		return codec.FastUnsupported, nil
	}
	for off := 0; off < len(raw); {
		n := len(raw) - off
		if n > maxFastChunk {
			n = maxFastChunk
		}
		if err := c.Report(d.r.Read(raw[off : off+n])); err != nil {
			return codec.FastUnsupported, err
		}
		off += n
	}
	return codec.FastOK, nil
}

type seqDecoder struct {
	d         *Decoder
	remaining int
}

func (s *seqDecoder) TryDecodeNext(c *codec.Context) (codec.Decoder, bool, error) {
	if s.remaining == 0 {
		return nil, false, nil
	}
	s.remaining--
	return s.d, true, nil
}

func (s *seqDecoder) SizeHint(c *codec.Context) codec.SizeHint { return codec.SizeHint(s.remaining) }

// FinishSequence cannot skip undecoded elements itself: storage is
// tagless, so an element's byte width is only known to whoever called
// DecodeSequence, not to the decoder. It is a no-op once every element
// has been consumed and an error otherwise, the same shape-required
// refusal Decoder.Skip already gives.
func (s *seqDecoder) FinishSequence(c *codec.Context) error {
	if s.remaining == 0 {
		return nil
	}
	return c.Report(&codec.Error{Type: codec.BadTag, Msg: "storage: finish requires knowing the remaining elements' shape out of band"})
}

type mapDecoder struct {
	d         *Decoder
	remaining int
}

func (m *mapDecoder) TryDecodeEntry(c *codec.Context) (codec.Decoder, codec.Decoder, bool, error) {
	if m.remaining == 0 {
		return nil, nil, false, nil
	}
	m.remaining--
	return m.d, m.d, true, nil
}

func (m *mapDecoder) SizeHint(c *codec.Context) codec.SizeHint { return codec.SizeHint(m.remaining) }

// FinishMap is FinishSequence's map counterpart: same tagless
// limitation, same refusal when entries remain undecoded.
func (m *mapDecoder) FinishMap(c *codec.Context) error {
	if m.remaining == 0 {
		return nil
	}
	return c.Report(&codec.Error{Type: codec.BadTag, Msg: "storage: finish requires knowing the remaining entries' shape out of band"})
}

type variantDecoder struct{ d *Decoder }

func (v *variantDecoder) DecodeTag(c *codec.Context) (codec.Decoder, error)   { return v.d, nil }
func (v *variantDecoder) DecodeValue(c *codec.Context) (codec.Decoder, error) { return v.d, nil }
