package json

import (
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"modernc.org/codec"
)

// Decoder implements codec.Decoder for JSON. It is self-describing:
// DecodeAny drives a Visitor from whichever token comes next.
type Decoder struct {
	r codec.Reader
}

// NewDecoder returns a json Decoder reading from r.
func NewDecoder(r codec.Reader) *Decoder { return &Decoder{r: r} }

func (d *Decoder) skipSpace(c *codec.Context) error {
	for {
		b, ok := d.r.Peek()
		if !ok {
			return nil
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			if _, err := d.r.ReadByte(); err != nil {
				return c.Report(err)
			}
		default:
			return nil
		}
	}
}

func (d *Decoder) expect(c *codec.Context, b byte) error {
	if err := d.skipSpace(c); err != nil {
		return err
	}
	got, err := d.r.ReadByte()
	if err != nil {
		return c.Report(err)
	}
	if got != b {
		return c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: expected " + string(b)})
	}
	return nil
}

func (d *Decoder) literal(c *codec.Context, lit string) error {
	for i := 0; i < len(lit); i++ {
		b, err := d.r.ReadByte()
		if err != nil {
			return c.Report(err)
		}
		if b != lit[i] {
			return c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: bad literal, expected " + lit})
		}
	}
	return nil
}

func (d *Decoder) readRawNumber(c *codec.Context) (string, error) {
	var buf []byte
loop:
	for {
		b, ok := d.r.Peek()
		if !ok {
			break
		}
		switch b {
		case '-', '+', '.', 'e', 'E', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if _, err := d.r.ReadByte(); err != nil {
				return "", c.Report(err)
			}
			buf = append(buf, b)
		default:
			break loop
		}
	}
	if len(buf) == 0 {
		return "", c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: expected a number"})
	}
	return string(buf), nil
}

func (d *Decoder) readString(c *codec.Context) (string, error) {
	if err := d.expect(c, '"'); err != nil {
		return "", err
	}
	var out []byte
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return "", c.Report(err)
		}
		if b == '"' {
			return string(out), nil
		}
		if b != '\\' {
			out = append(out, b)
			continue
		}
		esc, err := d.r.ReadByte()
		if err != nil {
			return "", c.Report(err)
		}
		switch esc {
		case '"', '\\', '/':
			out = append(out, esc)
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'u':
			r1, err := d.readHex4(c)
			if err != nil {
				return "", err
			}
			r := rune(r1)
			if utf16.IsSurrogate(r) {
				if err := d.expect(c, '\\'); err != nil {
					return "", err
				}
				if err := d.expect(c, 'u'); err != nil {
					return "", err
				}
				r2, err := d.readHex4(c)
				if err != nil {
					return "", err
				}
				r = utf16.DecodeRune(r, rune(r2))
				if r == utf8.RuneError {
					return "", c.Report(&codec.Error{Type: codec.UTF8Error, Msg: "json: invalid surrogate pair"})
				}
			}
			var tmp [utf8.UTFMax]byte
			n := utf8.EncodeRune(tmp[:], r)
			out = append(out, tmp[:n]...)
		default:
			return "", c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: invalid escape"})
		}
	}
}

func (d *Decoder) readHex4(c *codec.Context) (uint16, error) {
	var v uint16
	for i := 0; i < 4; i++ {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, c.Report(err)
		}
		v <<= 4
		switch {
		case b >= '0' && b <= '9':
			v |= uint16(b - '0')
		case b >= 'a' && b <= 'f':
			v |= uint16(b-'a') + 10
		case b >= 'A' && b <= 'F':
			v |= uint16(b-'A') + 10
		default:
			return 0, c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: invalid \\u escape"})
		}
	}
	return v, nil
}

func (d *Decoder) DecodeBool(c *codec.Context) (bool, error) {
	if err := d.skipSpace(c); err != nil {
		return false, err
	}
	b, ok := d.r.Peek()
	if !ok {
		return false, c.Report(&codec.Error{Type: codec.EndOfInput})
	}
	switch b {
	case 't':
		return true, d.literal(c, "true")
	case 'f':
		return false, d.literal(c, "false")
	default:
		return false, c.Report(&codec.Error{Type: codec.BadBoolean, Msg: "json: expected true or false"})
	}
}

func (d *Decoder) DecodeChar(c *codec.Context) (rune, error) {
	s, err := d.readString(c)
	if err != nil {
		return 0, err
	}
	r, n := utf8.DecodeRuneInString(s)
	if n != len(s) {
		return 0, c.Report(&codec.Error{Type: codec.BadCharacter, Msg: "json: expected a single character"})
	}
	return r, nil
}

func (d *Decoder) decodeUint(c *codec.Context) (uint64, error) {
	if err := d.skipSpace(c); err != nil {
		return 0, err
	}
	s, err := d.readRawNumber(c)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, c.Report(&codec.Error{Type: codec.Overflow, Msg: "json: " + err.Error()})
	}
	return v, nil
}

func (d *Decoder) decodeInt(c *codec.Context) (int64, error) {
	if err := d.skipSpace(c); err != nil {
		return 0, err
	}
	s, err := d.readRawNumber(c)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, c.Report(&codec.Error{Type: codec.Overflow, Msg: "json: " + err.Error()})
	}
	return v, nil
}

func (d *Decoder) DecodeU8(c *codec.Context) (uint8, error) {
	v, err := d.decodeUint(c)
	return uint8(v), err
}
func (d *Decoder) DecodeU16(c *codec.Context) (uint16, error) {
	v, err := d.decodeUint(c)
	return uint16(v), err
}
func (d *Decoder) DecodeU32(c *codec.Context) (uint32, error) {
	v, err := d.decodeUint(c)
	return uint32(v), err
}
func (d *Decoder) DecodeU64(c *codec.Context) (uint64, error) { return d.decodeUint(c) }

func (d *Decoder) DecodeI8(c *codec.Context) (int8, error) {
	v, err := d.decodeInt(c)
	return int8(v), err
}
func (d *Decoder) DecodeI16(c *codec.Context) (int16, error) {
	v, err := d.decodeInt(c)
	return int16(v), err
}
func (d *Decoder) DecodeI32(c *codec.Context) (int32, error) {
	v, err := d.decodeInt(c)
	return int32(v), err
}
func (d *Decoder) DecodeI64(c *codec.Context) (int64, error) { return d.decodeInt(c) }

func (d *Decoder) DecodeF32(c *codec.Context) (float32, error) {
	if err := d.skipSpace(c); err != nil {
		return 0, err
	}
	s, err := d.readRawNumber(c)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: " + err.Error()})
	}
	return float32(v), nil
}

func (d *Decoder) DecodeF64(c *codec.Context) (float64, error) {
	if err := d.skipSpace(c); err != nil {
		return 0, err
	}
	s, err := d.readRawNumber(c)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: " + err.Error()})
	}
	return v, nil
}

func (d *Decoder) DecodeEmpty(c *codec.Context) error {
	if err := d.skipSpace(c); err != nil {
		return err
	}
	return d.literal(c, "null")
}

func (d *Decoder) DecodeBytes(c *codec.Context) ([]byte, error) {
	seq, err := d.DecodeSequence(c)
	if err != nil {
		return nil, err
	}
	var out []byte
	for {
		next, ok, err := seq.TryDecodeNext(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		b, err := next.DecodeU8(c)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (d *Decoder) DecodeString(c *codec.Context) (string, error) { return d.readString(c) }

func (d *Decoder) DecodeArray(c *codec.Context, n int) ([]byte, error) {
	b, err := d.DecodeBytes(c)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, c.Report(&codec.Error{Type: codec.BadLength, Msg: "json: array length mismatch"})
	}
	return b, nil
}

func (d *Decoder) DecodeOption(c *codec.Context) (codec.Decoder, bool, error) {
	if err := d.skipSpace(c); err != nil {
		return nil, false, err
	}
	b, ok := d.r.Peek()
	if ok && b == 'n' {
		return nil, false, d.literal(c, "null")
	}
	return d, true, nil
}

func (d *Decoder) DecodePack(c *codec.Context) (codec.SequenceDecoder, error) { return d.DecodeSequence(c) }

func (d *Decoder) DecodeSequence(c *codec.Context) (codec.SequenceDecoder, error) {
	if err := d.expect(c, '['); err != nil {
		return nil, err
	}
	return &seqDecoder{d: d}, nil
}

func (d *Decoder) DecodeMap(c *codec.Context) (codec.MapDecoder, error) {
	if err := d.expect(c, '{'); err != nil {
		return nil, err
	}
	return &mapDecoder{d: d}, nil
}

func (d *Decoder) DecodeVariant(c *codec.Context) (codec.VariantDecoder, error) {
	if err := d.expect(c, '{'); err != nil {
		return nil, err
	}
	return &variantDecoder{d: d}, nil
}

func (d *Decoder) Skip(c *codec.Context) error {
	_, err := d.DecodeAny(c, discardVisitor{})
	return err
}

func (d *Decoder) TrySkip(c *codec.Context) (codec.SkipResult, error) {
	if err := d.Skip(c); err != nil {
		return codec.SkipUnsupported, err
	}
	return codec.Skipped, nil
}

func (d *Decoder) DecodeAny(c *codec.Context, visitor codec.Visitor) (any, error) {
	if err := d.skipSpace(c); err != nil {
		return nil, err
	}
	b, ok := d.r.Peek()
	if !ok {
		return nil, c.Report(&codec.Error{Type: codec.EndOfInput})
	}
	switch {
	case b == '"':
		s, err := d.readString(c)
		if err != nil {
			return nil, err
		}
		return visitor.VisitString(c, codec.SizeHint(len(s)), s)
	case b == 't' || b == 'f':
		v, err := d.DecodeBool(c)
		if err != nil {
			return nil, err
		}
		return visitor.VisitBool(c, v)
	case b == 'n':
		if err := d.literal(c, "null"); err != nil {
			return nil, err
		}
		return visitor.VisitUnit(c)
	case b == '[':
		sd, err := d.DecodeSequence(c)
		if err != nil {
			return nil, err
		}
		return visitor.VisitSequence(c, sd)
	case b == '{':
		md, err := d.DecodeMap(c)
		if err != nil {
			return nil, err
		}
		return visitor.VisitMap(c, md)
	default:
		s, err := d.readRawNumber(c)
		if err != nil {
			return nil, err
		}
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return visitor.VisitNumber(c, codec.Number{Kind: codec.NumI64, I64: v})
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: " + err.Error()})
		}
		return visitor.VisitNumber(c, codec.Number{Kind: codec.NumF64, F64: v})
	}
}

func (d *Decoder) AsDecoder(c *codec.Context) (codec.Decoder, error) { return d, nil }

func (d *Decoder) TryFastDecode(c *codec.Context, raw []byte, elemSize int) (codec.TryFastResult, error) {
	return codec.FastUnsupported, nil
}

type seqDecoder struct {
	d     *Decoder
	count int
}

func (s *seqDecoder) TryDecodeNext(c *codec.Context) (codec.Decoder, bool, error) {
	if err := s.d.skipSpace(c); err != nil {
		return nil, false, err
	}
	b, ok := s.d.r.Peek()
	if !ok {
		return nil, false, c.Report(&codec.Error{Type: codec.EndOfInput})
	}
	if b == ']' {
		s.d.r.ReadByte()
		return nil, false, nil
	}
	if s.count > 0 {
		if b != ',' {
			return nil, false, c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: expected , or ]"})
		}
		s.d.r.ReadByte()
		if err := s.d.skipSpace(c); err != nil {
			return nil, false, err
		}
	}
	s.count++
	return s.d, true, nil
}

func (s *seqDecoder) SizeHint(c *codec.Context) codec.SizeHint { return codec.HintAny }

// FinishSequence discards every element the caller didn't decode by
// reusing the same discardVisitor Decoder.Skip drives, walking the
// remaining comma-separated elements to the closing ].
func (s *seqDecoder) FinishSequence(c *codec.Context) error {
	for {
		next, ok, err := s.TryDecodeNext(c)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, err := next.DecodeAny(c, discardVisitor{}); err != nil {
			return err
		}
	}
}

type mapDecoder struct {
	d     *Decoder
	count int
}

func (m *mapDecoder) TryDecodeEntry(c *codec.Context) (codec.Decoder, codec.Decoder, bool, error) {
	if err := m.d.skipSpace(c); err != nil {
		return nil, nil, false, err
	}
	b, ok := m.d.r.Peek()
	if !ok {
		return nil, nil, false, c.Report(&codec.Error{Type: codec.EndOfInput})
	}
	if b == '}' {
		m.d.r.ReadByte()
		return nil, nil, false, nil
	}
	if m.count > 0 {
		if b != ',' {
			return nil, nil, false, c.Report(&codec.Error{Type: codec.BadTag, Msg: "json: expected , or }"})
		}
		m.d.r.ReadByte()
	}
	m.count++
	return &keyDecoder{Decoder: m.d}, m.d, true, nil
}

func (m *mapDecoder) SizeHint(c *codec.Context) codec.SizeHint { return codec.HintAny }

// FinishMap discards every entry the caller didn't decode, the map
// counterpart to seqDecoder.FinishSequence.
func (m *mapDecoder) FinishMap(c *codec.Context) error {
	for {
		key, value, ok, err := m.TryDecodeEntry(c)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, err := key.DecodeAny(c, discardVisitor{}); err != nil {
			return err
		}
		if _, err := value.DecodeAny(c, discardVisitor{}); err != nil {
			return err
		}
	}
}

// keyDecoder reads an object key (always a JSON string) followed by its
// colon, then hands control back to the plain Decoder for the value.
type keyDecoder struct {
	*Decoder
}

func (k *keyDecoder) DecodeString(c *codec.Context) (string, error) {
	s, err := k.Decoder.readString(c)
	if err != nil {
		return "", err
	}
	return s, k.Decoder.expect(c, ':')
}

func (k *keyDecoder) DecodeAny(c *codec.Context, visitor codec.Visitor) (any, error) {
	s, err := k.DecodeString(c)
	if err != nil {
		return nil, err
	}
	return visitor.VisitString(c, codec.SizeHint(len(s)), s)
}

type variantDecoder struct{ d *Decoder }

func (v *variantDecoder) DecodeTag(c *codec.Context) (codec.Decoder, error) {
	return &keyDecoder{Decoder: v.d}, nil
}

func (v *variantDecoder) DecodeValue(c *codec.Context) (codec.Decoder, error) {
	return v.d, nil
}

// discardVisitor implements codec.Visitor by ignoring every value,
// recursively draining sequences and maps so Decoder.Skip can reuse
// DecodeAny instead of a bespoke skip scanner.
type discardVisitor struct{}

func (discardVisitor) VisitUnit(c *codec.Context) (any, error)   { return nil, nil }
func (discardVisitor) VisitBool(c *codec.Context, v bool) (any, error) { return nil, nil }
func (discardVisitor) VisitChar(c *codec.Context, v rune) (any, error) { return nil, nil }
func (discardVisitor) VisitNumber(c *codec.Context, v codec.Number) (any, error) { return nil, nil }
func (discardVisitor) VisitBytes(c *codec.Context, hint codec.SizeHint, v []byte) (any, error) {
	return nil, nil
}
func (discardVisitor) VisitString(c *codec.Context, hint codec.SizeHint, v string) (any, error) {
	return nil, nil
}
func (discardVisitor) VisitSequence(c *codec.Context, sd codec.SequenceDecoder) (any, error) {
	for {
		next, ok, err := sd.TryDecodeNext(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if _, err := next.DecodeAny(c, discardVisitor{}); err != nil {
			return nil, err
		}
	}
}
func (discardVisitor) VisitMap(c *codec.Context, md codec.MapDecoder) (any, error) {
	for {
		key, value, ok, err := md.TryDecodeEntry(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if _, err := key.DecodeAny(c, discardVisitor{}); err != nil {
			return nil, err
		}
		if _, err := value.DecodeAny(c, discardVisitor{}); err != nil {
			return nil, err
		}
	}
}
func (discardVisitor) VisitVariant(c *codec.Context, vd codec.VariantDecoder) (any, error) {
	tag, err := vd.DecodeTag(c)
	if err != nil {
		return nil, err
	}
	if _, err := tag.DecodeAny(c, discardVisitor{}); err != nil {
		return nil, err
	}
	value, err := vd.DecodeValue(c)
	if err != nil {
		return nil, err
	}
	return value.DecodeAny(c, discardVisitor{})
}
func (discardVisitor) VisitOption(c *codec.Context, present bool, d codec.Decoder) (any, error) {
	if !present {
		return nil, nil
	}
	return d.DecodeAny(c, discardVisitor{})
}
