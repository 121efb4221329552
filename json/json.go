// Package json implements the textual format: RFC 8259 JSON, with
// \uXXXX surrogate-pair string escaping and shortest round-trip float
// formatting.
package json

import (
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"modernc.org/codec"
)

// Encoder implements codec.Encoder for JSON, writing directly to the
// underlying Writer with no intermediate buffering.
type Encoder struct {
	w codec.Writer
}

// NewEncoder returns a json Encoder writing to w.
func NewEncoder(w codec.Writer) *Encoder { return &Encoder{w: w} }

func (e *Encoder) writeString(c *codec.Context, s string) error {
	return c.Report(e.w.Write(appendQuoted(nil, s)))
}

// appendQuoted renders s as a quoted JSON string, escaping control
// characters, the quote and backslash characters, and non-BMP runes as
// UTF-16 surrogate pairs.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for _, r := range s {
		switch r {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			switch {
			case r < 0x20:
				dst = appendUnicodeEscape(dst, uint16(r))
			case r < utf8.RuneSelf:
				dst = append(dst, byte(r))
			case r > 0xFFFF:
				r1, r2 := utf16.EncodeRune(r)
				dst = appendUnicodeEscape(dst, uint16(r1))
				dst = appendUnicodeEscape(dst, uint16(r2))
			default:
				dst = appendUnicodeEscape(dst, uint16(r))
			}
		}
	}
	return append(dst, '"')
}

const hexDigits = "0123456789abcdef"

func appendUnicodeEscape(dst []byte, v uint16) []byte {
	dst = append(dst, '\\', 'u')
	dst = append(dst, hexDigits[(v>>12)&0xf], hexDigits[(v>>8)&0xf], hexDigits[(v>>4)&0xf], hexDigits[v&0xf])
	return dst
}

func (e *Encoder) EncodeBool(c *codec.Context, v bool) error {
	if v {
		return c.Report(e.w.Write([]byte("true")))
	}
	return c.Report(e.w.Write([]byte("false")))
}

func (e *Encoder) EncodeChar(c *codec.Context, v rune) error {
	return e.writeString(c, string(v))
}

func (e *Encoder) writeNumber(c *codec.Context, s string) error {
	return c.Report(e.w.Write([]byte(s)))
}

func (e *Encoder) EncodeU8(c *codec.Context, v uint8) error  { return e.writeNumber(c, strconv.FormatUint(uint64(v), 10)) }
func (e *Encoder) EncodeU16(c *codec.Context, v uint16) error { return e.writeNumber(c, strconv.FormatUint(uint64(v), 10)) }
func (e *Encoder) EncodeU32(c *codec.Context, v uint32) error { return e.writeNumber(c, strconv.FormatUint(uint64(v), 10)) }
func (e *Encoder) EncodeU64(c *codec.Context, v uint64) error { return e.writeNumber(c, strconv.FormatUint(v, 10)) }
func (e *Encoder) EncodeI8(c *codec.Context, v int8) error   { return e.writeNumber(c, strconv.FormatInt(int64(v), 10)) }
func (e *Encoder) EncodeI16(c *codec.Context, v int16) error { return e.writeNumber(c, strconv.FormatInt(int64(v), 10)) }
func (e *Encoder) EncodeI32(c *codec.Context, v int32) error { return e.writeNumber(c, strconv.FormatInt(int64(v), 10)) }
func (e *Encoder) EncodeI64(c *codec.Context, v int64) error { return e.writeNumber(c, strconv.FormatInt(v, 10)) }

func (e *Encoder) EncodeF32(c *codec.Context, v float32) error {
	return e.writeNumber(c, strconv.FormatFloat(float64(v), 'g', -1, 32))
}

func (e *Encoder) EncodeF64(c *codec.Context, v float64) error {
	return e.writeNumber(c, strconv.FormatFloat(v, 'g', -1, 64))
}

func (e *Encoder) EncodeEmpty(c *codec.Context) error {
	return c.Report(e.w.Write([]byte("null")))
}

func (e *Encoder) EncodeBytes(c *codec.Context, v []byte) error {
	seq, err := e.EncodeSequence(c, codec.SizeHint(len(v)))
	if err != nil {
		return err
	}
	for _, b := range v {
		next, err := seq.EncodeNext(c)
		if err != nil {
			return err
		}
		if err := next.EncodeU8(c, b); err != nil {
			return err
		}
	}
	return seq.FinishSequence(c)
}

func (e *Encoder) EncodeString(c *codec.Context, v string) error { return e.writeString(c, v) }

func (e *Encoder) EncodeArray(c *codec.Context, v []byte) error { return e.EncodeBytes(c, v) }

func (e *Encoder) EncodeSome(c *codec.Context) (codec.Encoder, error) { return e, nil }

func (e *Encoder) EncodeNone(c *codec.Context) error {
	return c.Report(e.w.Write([]byte("null")))
}

func (e *Encoder) EncodePack(c *codec.Context) (codec.SequenceEncoder, error) {
	return e.EncodeSequence(c, codec.HintAny)
}

func (e *Encoder) EncodeSequence(c *codec.Context, hint codec.SizeHint) (codec.SequenceEncoder, error) {
	if err := c.Report(e.w.WriteByte('[')); err != nil {
		return nil, err
	}
	return &seqEncoder{e: e}, nil
}

func (e *Encoder) EncodeMap(c *codec.Context, hint codec.SizeHint) (codec.MapEncoder, error) {
	if err := c.Report(e.w.WriteByte('{')); err != nil {
		return nil, err
	}
	return &mapEncoder{e: e}, nil
}

func (e *Encoder) EncodeVariant(c *codec.Context) (codec.VariantEncoder, error) {
	if err := c.Report(e.w.WriteByte('{')); err != nil {
		return nil, err
	}
	return &variantEncoder{e: e}, nil
}

func (e *Encoder) TryFastEncode(c *codec.Context, raw []byte, elemSize int) (codec.TryFastResult, error) {
	return codec.FastUnsupported, nil
}

type seqEncoder struct {
	e     *Encoder
	count int
}

func (s *seqEncoder) EncodeNext(c *codec.Context) (codec.Encoder, error) {
	if s.count > 0 {
		if err := c.Report(s.e.w.WriteByte(',')); err != nil {
			return nil, err
		}
	}
	s.count++
	return s.e, nil
}

func (s *seqEncoder) FinishSequence(c *codec.Context) error {
	return c.Report(s.e.w.WriteByte(']'))
}

type mapEncoder struct {
	e     *Encoder
	count int
}

func (m *mapEncoder) EncodeEntry(c *codec.Context) (codec.Encoder, codec.Encoder, error) {
	if m.count > 0 {
		if err := c.Report(m.e.w.WriteByte(',')); err != nil {
			return nil, nil, err
		}
	}
	m.count++
	return &keyEncoder{Encoder: m.e}, m.e, nil
}

func (m *mapEncoder) FinishMap(c *codec.Context) error {
	return c.Report(m.e.w.WriteByte('}'))
}

// keyEncoder renders string and 64-bit integer keys (EncodeString,
// EncodeU64, EncodeI64) as quoted JSON strings, then emits the colon.
// Its other Encoder methods are the plain Encoder's: they write the
// value unquoted and emit no colon.
type keyEncoder struct {
	*Encoder
}

func (k *keyEncoder) after(c *codec.Context, err error) error {
	if err != nil {
		return err
	}
	return c.Report(k.w.WriteByte(':'))
}

func (k *keyEncoder) EncodeString(c *codec.Context, v string) error {
	return k.after(c, k.writeString(c, v))
}

func (k *keyEncoder) EncodeU64(c *codec.Context, v uint64) error {
	return k.after(c, k.writeString(c, strconv.FormatUint(v, 10)))
}

func (k *keyEncoder) EncodeI64(c *codec.Context, v int64) error {
	return k.after(c, k.writeString(c, strconv.FormatInt(v, 10)))
}

type variantEncoder struct{ e *Encoder }

func (v *variantEncoder) EncodeTag(c *codec.Context) (codec.Encoder, error) {
	return &keyEncoder{Encoder: v.e}, nil
}

func (v *variantEncoder) EncodeValue(c *codec.Context) (codec.Encoder, error) { return v.e, nil }

func (v *variantEncoder) FinishVariant(c *codec.Context) error {
	return c.Report(v.e.w.WriteByte('}'))
}
