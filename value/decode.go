package value

import "modernc.org/codec"

// Decode drives d's self-describing decode_any through a Visitor that
// rebuilds a Value tree, the mirror operation to EncodeTo: it lets a
// caller buffer an arbitrary incoming value before picking its final
// destination type.
func Decode(c *codec.Context, d codec.Decoder) (Value, error) {
	got, err := d.DecodeAny(c, valueVisitor{})
	if err != nil {
		return Value{}, err
	}
	v, ok := got.(Value)
	if !ok {
		return Value{}, c.Report(&codec.Error{Type: codec.BadTag, Msg: "value: decode_any did not return a value"})
	}
	return v, nil
}

// AsDecoder re-exposes v as a fresh codec.Decoder, so a value already
// materialized in memory can be decoded again into a derived type.
func (v *Value) AsDecoder(c *codec.Context) (codec.Decoder, error) { return v, nil }

func (v *Value) numberAsU64(c *codec.Context) (uint64, error) {
	if v.Kind != KindNumber {
		return 0, mismatch(c, *v, "number")
	}
	switch v.Number.Kind {
	case codec.NumU64:
		return v.Number.U64, nil
	case codec.NumI64:
		return uint64(v.Number.I64), nil
	case codec.NumF64:
		return uint64(v.Number.F64), nil
	}
	return 0, mismatch(c, *v, "number")
}

func (v *Value) numberAsI64(c *codec.Context) (int64, error) {
	if v.Kind != KindNumber {
		return 0, mismatch(c, *v, "number")
	}
	switch v.Number.Kind {
	case codec.NumU64:
		return int64(v.Number.U64), nil
	case codec.NumI64:
		return v.Number.I64, nil
	case codec.NumF64:
		return int64(v.Number.F64), nil
	}
	return 0, mismatch(c, *v, "number")
}

func (v *Value) numberAsF64(c *codec.Context) (float64, error) {
	if v.Kind != KindNumber {
		return 0, mismatch(c, *v, "number")
	}
	switch v.Number.Kind {
	case codec.NumU64:
		return float64(v.Number.U64), nil
	case codec.NumI64:
		return float64(v.Number.I64), nil
	case codec.NumF64:
		return v.Number.F64, nil
	}
	return 0, mismatch(c, *v, "number")
}

func (v *Value) DecodeBool(c *codec.Context) (bool, error) {
	if v.Kind != KindBool {
		return false, mismatch(c, *v, "bool")
	}
	return v.Bool, nil
}

func (v *Value) DecodeChar(c *codec.Context) (rune, error) {
	if v.Kind != KindChar {
		return 0, mismatch(c, *v, "char")
	}
	return v.Char, nil
}

func (v *Value) DecodeU8(c *codec.Context) (uint8, error) {
	n, err := v.numberAsU64(c)
	return uint8(n), err
}
func (v *Value) DecodeU16(c *codec.Context) (uint16, error) {
	n, err := v.numberAsU64(c)
	return uint16(n), err
}
func (v *Value) DecodeU32(c *codec.Context) (uint32, error) {
	n, err := v.numberAsU64(c)
	return uint32(n), err
}
func (v *Value) DecodeU64(c *codec.Context) (uint64, error) { return v.numberAsU64(c) }

func (v *Value) DecodeI8(c *codec.Context) (int8, error) {
	n, err := v.numberAsI64(c)
	return int8(n), err
}
func (v *Value) DecodeI16(c *codec.Context) (int16, error) {
	n, err := v.numberAsI64(c)
	return int16(n), err
}
func (v *Value) DecodeI32(c *codec.Context) (int32, error) {
	n, err := v.numberAsI64(c)
	return int32(n), err
}
func (v *Value) DecodeI64(c *codec.Context) (int64, error) { return v.numberAsI64(c) }

func (v *Value) DecodeF32(c *codec.Context) (float32, error) {
	n, err := v.numberAsF64(c)
	return float32(n), err
}
func (v *Value) DecodeF64(c *codec.Context) (float64, error) { return v.numberAsF64(c) }

func (v *Value) DecodeEmpty(c *codec.Context) error {
	if v.Kind != KindUnit {
		return mismatch(c, *v, "unit")
	}
	return nil
}

func (v *Value) DecodeBytes(c *codec.Context) ([]byte, error) {
	if v.Kind != KindBytes {
		return nil, mismatch(c, *v, "bytes")
	}
	return v.Bytes, nil
}

func (v *Value) DecodeString(c *codec.Context) (string, error) {
	if v.Kind != KindString {
		return "", mismatch(c, *v, "string")
	}
	return v.Str, nil
}

func (v *Value) DecodeArray(c *codec.Context, n int) ([]byte, error) {
	if v.Kind != KindBytes {
		return nil, mismatch(c, *v, "bytes")
	}
	if len(v.Bytes) != n {
		return nil, c.Report(&codec.Error{Type: codec.BadLength, Msg: "value: array length mismatch"})
	}
	return v.Bytes, nil
}

func (v *Value) DecodeOption(c *codec.Context) (codec.Decoder, bool, error) {
	if v.Kind != KindOption {
		return nil, false, mismatch(c, *v, "option")
	}
	if v.Option == nil {
		return nil, false, nil
	}
	return v.Option, true, nil
}

func (v *Value) DecodePack(c *codec.Context) (codec.SequenceDecoder, error) { return v.DecodeSequence(c) }

func (v *Value) DecodeSequence(c *codec.Context) (codec.SequenceDecoder, error) {
	if v.Kind != KindSequence {
		return nil, mismatch(c, *v, "sequence")
	}
	return &seqDecoder{items: v.Sequence}, nil
}

func (v *Value) DecodeMap(c *codec.Context) (codec.MapDecoder, error) {
	if v.Kind != KindMap {
		return nil, mismatch(c, *v, "map")
	}
	return &mapDecoder{items: v.Map}, nil
}

func (v *Value) DecodeVariant(c *codec.Context) (codec.VariantDecoder, error) {
	if v.Kind != KindVariant {
		return nil, mismatch(c, *v, "variant")
	}
	return &variantDecoder{v: v.Variant}, nil
}

// Skip is a no-op: a value already sitting in memory has nothing to
// read past.
func (v *Value) Skip(c *codec.Context) error { return nil }

func (v *Value) TrySkip(c *codec.Context) (codec.SkipResult, error) { return codec.Skipped, nil }

func (v *Value) TryFastDecode(c *codec.Context, raw []byte, elemSize int) (codec.TryFastResult, error) {
	return codec.FastUnsupported, nil
}

func (v *Value) DecodeAny(c *codec.Context, visitor codec.Visitor) (any, error) {
	switch v.Kind {
	case KindUnit:
		return visitor.VisitUnit(c)
	case KindBool:
		return visitor.VisitBool(c, v.Bool)
	case KindChar:
		return visitor.VisitChar(c, v.Char)
	case KindNumber:
		return visitor.VisitNumber(c, v.Number)
	case KindBytes:
		return visitor.VisitBytes(c, codec.SizeHint(len(v.Bytes)), v.Bytes)
	case KindString:
		return visitor.VisitString(c, codec.SizeHint(len(v.Str)), v.Str)
	case KindSequence:
		return visitor.VisitSequence(c, &seqDecoder{items: v.Sequence})
	case KindMap:
		return visitor.VisitMap(c, &mapDecoder{items: v.Map})
	case KindVariant:
		return visitor.VisitVariant(c, &variantDecoder{v: v.Variant})
	case KindOption:
		if v.Option == nil {
			return visitor.VisitOption(c, false, nil)
		}
		return visitor.VisitOption(c, true, v.Option)
	default:
		return nil, c.Report(&codec.Error{Type: codec.BadTag, Msg: "value: unknown kind"})
	}
}

type seqDecoder struct {
	items []Value
	pos   int
}

func (s *seqDecoder) TryDecodeNext(c *codec.Context) (codec.Decoder, bool, error) {
	if s.pos >= len(s.items) {
		return nil, false, nil
	}
	d := &s.items[s.pos]
	s.pos++
	return d, true, nil
}

func (s *seqDecoder) SizeHint(c *codec.Context) codec.SizeHint { return codec.SizeHint(len(s.items)) }

// FinishSequence only moves the cursor past the remaining items: they
// already sit in memory, so whatever the caller didn't decode simply
// stays unread, with nothing downstream to corrupt.
func (s *seqDecoder) FinishSequence(c *codec.Context) error {
	s.pos = len(s.items)
	return nil
}

type mapDecoder struct {
	items []Entry
	pos   int
}

func (m *mapDecoder) TryDecodeEntry(c *codec.Context) (codec.Decoder, codec.Decoder, bool, error) {
	if m.pos >= len(m.items) {
		return nil, nil, false, nil
	}
	e := &m.items[m.pos]
	m.pos++
	return &e.Key, &e.Value, true, nil
}

func (m *mapDecoder) SizeHint(c *codec.Context) codec.SizeHint { return codec.SizeHint(len(m.items)) }

// FinishMap is FinishSequence's map counterpart: it only moves the
// cursor past the remaining entries.
func (m *mapDecoder) FinishMap(c *codec.Context) error {
	m.pos = len(m.items)
	return nil
}

type variantDecoder struct{ v *Variant }

func (d *variantDecoder) DecodeTag(c *codec.Context) (codec.Decoder, error)   { return &d.v.Tag, nil }
func (d *variantDecoder) DecodeValue(c *codec.Context) (codec.Decoder, error) { return &d.v.Value, nil }

// valueVisitor rebuilds a Value tree from any decoder's decode_any,
// the inverse of EncodeTo.
type valueVisitor struct{}

func (valueVisitor) VisitUnit(c *codec.Context) (any, error) { return Unit(), nil }
func (valueVisitor) VisitBool(c *codec.Context, v bool) (any, error) { return Bool(v), nil }
func (valueVisitor) VisitChar(c *codec.Context, v rune) (any, error) { return Char(v), nil }
func (valueVisitor) VisitNumber(c *codec.Context, v codec.Number) (any, error) {
	return Number(v), nil
}

func (valueVisitor) VisitBytes(c *codec.Context, hint codec.SizeHint, v []byte) (any, error) {
	return Bytes(append([]byte(nil), v...)), nil
}

func (valueVisitor) VisitString(c *codec.Context, hint codec.SizeHint, v string) (any, error) {
	return String(v), nil
}

func (valueVisitor) VisitSequence(c *codec.Context, sd codec.SequenceDecoder) (any, error) {
	var items []Value
	for {
		next, ok, err := sd.TryDecodeNext(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return Sequence(items), nil
		}
		got, err := next.DecodeAny(c, valueVisitor{})
		if err != nil {
			return nil, err
		}
		items = append(items, got.(Value))
	}
}

func (valueVisitor) VisitMap(c *codec.Context, md codec.MapDecoder) (any, error) {
	var entries []Entry
	for {
		key, val, ok, err := md.TryDecodeEntry(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return Map(entries), nil
		}
		k, err := key.DecodeAny(c, valueVisitor{})
		if err != nil {
			return nil, err
		}
		v, err := val.DecodeAny(c, valueVisitor{})
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: k.(Value), Value: v.(Value)})
	}
}

func (valueVisitor) VisitVariant(c *codec.Context, vd codec.VariantDecoder) (any, error) {
	tagDec, err := vd.DecodeTag(c)
	if err != nil {
		return nil, err
	}
	tag, err := tagDec.DecodeAny(c, valueVisitor{})
	if err != nil {
		return nil, err
	}
	valDec, err := vd.DecodeValue(c)
	if err != nil {
		return nil, err
	}
	val, err := valDec.DecodeAny(c, valueVisitor{})
	if err != nil {
		return nil, err
	}
	return VariantOf(tag.(Value), val.(Value)), nil
}

func (valueVisitor) VisitOption(c *codec.Context, present bool, d codec.Decoder) (any, error) {
	if !present {
		return None(), nil
	}
	inner, err := d.DecodeAny(c, valueVisitor{})
	if err != nil {
		return nil, err
	}
	v := inner.(Value)
	return Some(v), nil
}
