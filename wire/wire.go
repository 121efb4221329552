package wire

import (
	"math"

	"modernc.org/codec"
	"modernc.org/codec/stream"
	"modernc.org/codec/varint"
)

// Encoder implements codec.Encoder for the tagged wire format.
type Encoder struct {
	w codec.Writer
}

// NewEncoder returns a wire Encoder writing to w.
func NewEncoder(w codec.Writer) *Encoder { return &Encoder{w: w} }

func (e *Encoder) writeUnsigned(c *codec.Context, v uint64) error {
	if v < sentinel {
		return c.Report(e.w.WriteByte(byte(NewTag(Continuation, int(v)))))
	}
	if err := c.Report(e.w.WriteByte(byte(NewTagVarint(Continuation)))); err != nil {
		return err
	}
	return c.Report(e.w.Write(varint.AppendContinuation(nil, v)))
}

func (e *Encoder) EncodeBool(c *codec.Context, v bool) error {
	if v {
		return e.writeUnsigned(c, 1)
	}
	return e.writeUnsigned(c, 0)
}

func (e *Encoder) EncodeChar(c *codec.Context, v rune) error { return e.writeUnsigned(c, uint64(v)) }
func (e *Encoder) EncodeU8(c *codec.Context, v uint8) error  { return e.writeUnsigned(c, uint64(v)) }
func (e *Encoder) EncodeU16(c *codec.Context, v uint16) error { return e.writeUnsigned(c, uint64(v)) }
func (e *Encoder) EncodeU32(c *codec.Context, v uint32) error { return e.writeUnsigned(c, uint64(v)) }
func (e *Encoder) EncodeU64(c *codec.Context, v uint64) error { return e.writeUnsigned(c, v) }

func (e *Encoder) EncodeI8(c *codec.Context, v int8) error  { return e.writeUnsigned(c, varint.ZigZag(int64(v))) }
func (e *Encoder) EncodeI16(c *codec.Context, v int16) error { return e.writeUnsigned(c, varint.ZigZag(int64(v))) }
func (e *Encoder) EncodeI32(c *codec.Context, v int32) error { return e.writeUnsigned(c, varint.ZigZag(int64(v))) }
func (e *Encoder) EncodeI64(c *codec.Context, v int64) error { return e.writeUnsigned(c, varint.ZigZag(v)) }

func (e *Encoder) EncodeF32(c *codec.Context, v float32) error {
	return e.writeUnsigned(c, uint64(math.Float32bits(v)))
}

func (e *Encoder) EncodeF64(c *codec.Context, v float64) error {
	return e.writeUnsigned(c, math.Float64bits(v))
}

func (e *Encoder) EncodeEmpty(c *codec.Context) error {
	return c.Report(e.w.WriteByte(byte(NewTag(Mark, 0))))
}

func (e *Encoder) EncodeBytes(c *codec.Context, v []byte) error {
	if err := writeTag(c, e.w, Prefix, len(v)); err != nil {
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
	if err := writeTag(c, e.w, Sequence, 1); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Encoder) EncodeNone(c *codec.Context) error {
	return writeTag(c, e.w, Sequence, 0)
}

func (e *Encoder) EncodePack(c *codec.Context) (codec.SequenceEncoder, error) {
	return &packEncoder{outer: e, buf: stream.NewHostWriter()}, nil
}

func (e *Encoder) EncodeSequence(c *codec.Context, hint codec.SizeHint) (codec.SequenceEncoder, error) {
	n, ok := hint.Exact()
	if !ok {
		return nil, c.Report(&codec.Error{Type: codec.BadLength, Msg: "wire: sequence requires an exact size hint"})
	}
	if err := writeTag(c, e.w, Sequence, n); err != nil {
		return nil, err
	}
	return &seqEncoder{e: e}, nil
}

func (e *Encoder) EncodeMap(c *codec.Context, hint codec.SizeHint) (codec.MapEncoder, error) {
	n, ok := hint.Exact()
	if !ok {
		return nil, c.Report(&codec.Error{Type: codec.BadLength, Msg: "wire: map requires an exact size hint"})
	}
	if err := writeTag(c, e.w, Sequence, 2*n); err != nil {
		return nil, err
	}
	return &mapEncoder{e: e}, nil
}

func (e *Encoder) EncodeVariant(c *codec.Context) (codec.VariantEncoder, error) {
	return &variantEncoder{e: e}, nil
}

func (e *Encoder) TryFastEncode(c *codec.Context, raw []byte, elemSize int) (codec.TryFastResult, error) {
	return codec.FastUnsupported, nil
}

type seqEncoder struct{ e *Encoder }

func (s *seqEncoder) EncodeNext(c *codec.Context) (codec.Encoder, error) { return s.e, nil }
func (s *seqEncoder) FinishSequence(c *codec.Context) error              { return nil }

// packEncoder buffers its elements so the outer Prefix tag can carry
// their total length, since wire tags must be known up front.
type packEncoder struct {
	outer *Encoder
	buf   *stream.HostWriter
	inner *Encoder
}

func (p *packEncoder) EncodeNext(c *codec.Context) (codec.Encoder, error) {
	if p.inner == nil {
		p.inner = NewEncoder(p.buf)
	}
	return p.inner, nil
}

func (p *packEncoder) FinishSequence(c *codec.Context) error {
	if err := writeTag(c, p.outer.w, Prefix, len(p.buf.Bytes())); err != nil {
		return err
	}
	return c.Report(p.outer.w.Write(p.buf.Bytes()))
}

type mapEncoder struct{ e *Encoder }

func (m *mapEncoder) EncodeEntry(c *codec.Context) (codec.Encoder, codec.Encoder, error) {
	return m.e, m.e, nil
}
func (m *mapEncoder) FinishMap(c *codec.Context) error { return nil }

type variantEncoder struct{ e *Encoder }

func (v *variantEncoder) EncodeTag(c *codec.Context) (codec.Encoder, error)   { return v.e, nil }
func (v *variantEncoder) EncodeValue(c *codec.Context) (codec.Encoder, error) { return v.e, nil }
func (v *variantEncoder) FinishVariant(c *codec.Context) error                { return nil }

// Decoder implements codec.Decoder for the tagged wire format.
type Decoder struct {
	r codec.Reader
}

// NewDecoder returns a wire Decoder reading from r.
func NewDecoder(r codec.Reader) *Decoder { return &Decoder{r: r} }

func (d *Decoder) readUnsigned(c *codec.Context) (uint64, error) {
	kind, n, err := readTag(c, d.r)
	if err != nil {
		return 0, err
	}
	if kind != Continuation {
		return 0, c.Report(&codec.Error{Type: codec.BadTag, Msg: "wire: expected Continuation tag"})
	}
	return uint64(n), nil
}

func (d *Decoder) DecodeBool(c *codec.Context) (bool, error) {
	v, err := d.readUnsigned(c)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, c.Report(&codec.Error{Type: codec.BadBoolean, Msg: "wire: bad boolean tag value"})
	}
}

func (d *Decoder) DecodeChar(c *codec.Context) (rune, error) {
	v, err := d.readUnsigned(c)
	if err != nil {
		return 0, err
	}
	r := rune(v)
	if r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
		return 0, c.Report(&codec.Error{Type: codec.BadCharacter, Msg: "wire: invalid code point"})
	}
	return r, nil
}

func (d *Decoder) DecodeU8(c *codec.Context) (uint8, error) {
	v, err := d.readUnsigned(c)
	return uint8(v), err
}
func (d *Decoder) DecodeU16(c *codec.Context) (uint16, error) {
	v, err := d.readUnsigned(c)
	return uint16(v), err
}
func (d *Decoder) DecodeU32(c *codec.Context) (uint32, error) {
	v, err := d.readUnsigned(c)
	return uint32(v), err
}
func (d *Decoder) DecodeU64(c *codec.Context) (uint64, error) { return d.readUnsigned(c) }

func (d *Decoder) decodeSigned(c *codec.Context) (int64, error) {
	v, err := d.readUnsigned(c)
	if err != nil {
		return 0, err
	}
	return varint.UnZigZag(v), nil
}

func (d *Decoder) DecodeI8(c *codec.Context) (int8, error) {
	v, err := d.decodeSigned(c)
	return int8(v), err
}
func (d *Decoder) DecodeI16(c *codec.Context) (int16, error) {
	v, err := d.decodeSigned(c)
	return int16(v), err
}
func (d *Decoder) DecodeI32(c *codec.Context) (int32, error) {
	v, err := d.decodeSigned(c)
	return int32(v), err
}
func (d *Decoder) DecodeI64(c *codec.Context) (int64, error) { return d.decodeSigned(c) }

func (d *Decoder) DecodeF32(c *codec.Context) (float32, error) {
	v, err := d.readUnsigned(c)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

func (d *Decoder) DecodeF64(c *codec.Context) (float64, error) {
	v, err := d.readUnsigned(c)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

func (d *Decoder) DecodeEmpty(c *codec.Context) error {
	kind, _, err := readTag(c, d.r)
	if err != nil {
		return err
	}
	if kind != Mark {
		return c.Report(&codec.Error{Type: codec.BadTag, Msg: "wire: expected Mark tag for empty value"})
	}
	return nil
}

func (d *Decoder) DecodeBytes(c *codec.Context) ([]byte, error) {
	kind, n, err := readTag(c, d.r)
	if err != nil {
		return nil, err
	}
	if kind != Prefix {
		return nil, c.Report(&codec.Error{Type: codec.BadTag, Msg: "wire: expected Prefix tag"})
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
	kind, n, err := readTag(c, d.r)
	if err != nil {
		return nil, false, err
	}
	if kind != Sequence {
		return nil, false, c.Report(&codec.Error{Type: codec.ExpectedOption, Msg: "wire: expected Sequence tag for option"})
	}
	switch n {
	case 0:
		return nil, false, nil
	case 1:
		return d, true, nil
	default:
		return nil, false, c.Report(&codec.Error{Type: codec.ExpectedOption, Msg: "wire: bad option sequence length"})
	}
}

func (d *Decoder) DecodePack(c *codec.Context) (codec.SequenceDecoder, error) {
	kind, n, err := readTag(c, d.r)
	if err != nil {
		return nil, err
	}
	if kind != Prefix {
		return nil, c.Report(&codec.Error{Type: codec.BadTag, Msg: "wire: expected Prefix tag for pack"})
	}
	bounded := &Decoder{r: d.r.Limit(n)}
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

// FinishSequence drains whatever bytes remain inside the pack's Prefix
// bound. The bound already fixes the byte count, so no tag inspection
// is needed to skip the rest.
func (p *packDecoder) FinishSequence(c *codec.Context) error {
	for !p.d.r.IsEOF() {
		if _, err := p.d.r.ReadByte(); err != nil {
			return c.Report(err)
		}
	}
	return nil
}

func (d *Decoder) DecodeSequence(c *codec.Context) (codec.SequenceDecoder, error) {
	kind, n, err := readTag(c, d.r)
	if err != nil {
		return nil, err
	}
	if kind != Sequence {
		return nil, c.Report(&codec.Error{Type: codec.BadTag, Msg: "wire: expected Sequence tag"})
	}
	return &seqDecoder{d: d, remaining: n}, nil
}

func (d *Decoder) DecodeMap(c *codec.Context) (codec.MapDecoder, error) {
	kind, n, err := readTag(c, d.r)
	if err != nil {
		return nil, err
	}
	if kind != Sequence || n%2 != 0 {
		return nil, c.Report(&codec.Error{Type: codec.BadTag, Msg: "wire: expected an even-length Sequence tag for a map"})
	}
	return &mapDecoder{d: d, remaining: n / 2}, nil
}

func (d *Decoder) DecodeVariant(c *codec.Context) (codec.VariantDecoder, error) {
	return &variantDecoder{d: d}, nil
}

func (d *Decoder) Skip(c *codec.Context) error {
	return SkipAny(c, d.r)
}

func (d *Decoder) TrySkip(c *codec.Context) (codec.SkipResult, error) {
	if err := SkipAny(c, d.r); err != nil {
		return codec.SkipUnsupported, err
	}
	return codec.Skipped, nil
}

func (d *Decoder) DecodeAny(c *codec.Context, visitor codec.Visitor) (any, error) {
	kind, n, err := readTag(c, d.r)
	if err != nil {
		return nil, err
	}
	switch kind {
	case Prefix:
		buf := make([]byte, n)
		if err := d.r.Read(buf); err != nil {
			return nil, c.Report(err)
		}
		return visitor.VisitBytes(c, codec.SizeHint(n), buf)
	case Sequence:
		return visitor.VisitSequence(c, &seqDecoder{d: d, remaining: n})
	case Continuation:
		return visitor.VisitNumber(c, codec.Number{Kind: codec.NumU64, U64: uint64(n)})
	case Mark:
		return visitor.VisitUnit(c)
	default:
		return nil, c.Report(&codec.Error{Type: codec.BadTag, Msg: "wire: unrecognized tag kind"})
	}
}

func (d *Decoder) AsDecoder(c *codec.Context) (codec.Decoder, error) { return d, nil }

func (d *Decoder) TryFastDecode(c *codec.Context, raw []byte, elemSize int) (codec.TryFastResult, error) {
	return codec.FastUnsupported, nil
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

// FinishSequence skips every element the caller didn't decode via
// SkipAny, the same counter-based walk DecodeAny's Sequence case and
// Decoder.Skip already use, so a trailing field a derived struct
// doesn't recognize never reaches the next decode call.
func (s *seqDecoder) FinishSequence(c *codec.Context) error {
	for ; s.remaining > 0; s.remaining-- {
		if err := SkipAny(c, s.d.r); err != nil {
			return err
		}
	}
	return nil
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

// FinishMap is FinishSequence's map counterpart: each undecoded entry
// is a key and a value, both skipped via SkipAny.
func (m *mapDecoder) FinishMap(c *codec.Context) error {
	for ; m.remaining > 0; m.remaining-- {
		if err := SkipAny(c, m.d.r); err != nil {
			return err
		}
		if err := SkipAny(c, m.d.r); err != nil {
			return err
		}
	}
	return nil
}

type variantDecoder struct{ d *Decoder }

func (v *variantDecoder) DecodeTag(c *codec.Context) (codec.Decoder, error)   { return v.d, nil }
func (v *variantDecoder) DecodeValue(c *codec.Context) (codec.Decoder, error) { return v.d, nil }
