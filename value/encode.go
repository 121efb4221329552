package value

import "modernc.org/codec"

// EncodeTo replays v into any format's Encoder, satisfying codec.Encode.
// Derive code that buffers a value before knowing its destination type
// decodes once into a Value and can then EncodeTo any number of formats.
func (v Value) EncodeTo(c *codec.Context, e codec.Encoder) error {
	switch v.Kind {
	case KindUnit:
		return e.EncodeEmpty(c)
	case KindBool:
		return e.EncodeBool(c, v.Bool)
	case KindChar:
		return e.EncodeChar(c, v.Char)
	case KindNumber:
		return encodeNumber(c, e, v.Number)
	case KindBytes:
		return e.EncodeBytes(c, v.Bytes)
	case KindString:
		return e.EncodeString(c, v.Str)
	case KindSequence:
		return v.encodeSequence(c, e)
	case KindMap:
		return v.encodeMap(c, e)
	case KindVariant:
		return v.encodeVariant(c, e)
	case KindOption:
		return v.encodeOption(c, e)
	default:
		return c.Report(&codec.Error{Type: codec.BadTag, Msg: "value: unknown kind"})
	}
}

func encodeNumber(c *codec.Context, e codec.Encoder, n codec.Number) error {
	switch n.Kind {
	case codec.NumU64:
		return e.EncodeU64(c, n.U64)
	case codec.NumI64:
		return e.EncodeI64(c, n.I64)
	case codec.NumF64:
		return e.EncodeF64(c, n.F64)
	default:
		return c.Report(&codec.Error{Type: codec.BadTag, Msg: "value: unknown number kind"})
	}
}

func (v Value) encodeSequence(c *codec.Context, e codec.Encoder) error {
	seq, err := e.EncodeSequence(c, codec.SizeHint(len(v.Sequence)))
	if err != nil {
		return err
	}
	for i := range v.Sequence {
		next, err := seq.EncodeNext(c)
		if err != nil {
			return err
		}
		if err := v.Sequence[i].EncodeTo(c, next); err != nil {
			return err
		}
	}
	return seq.FinishSequence(c)
}

func (v Value) encodeMap(c *codec.Context, e codec.Encoder) error {
	m, err := e.EncodeMap(c, codec.SizeHint(len(v.Map)))
	if err != nil {
		return err
	}
	for i := range v.Map {
		key, val, err := m.EncodeEntry(c)
		if err != nil {
			return err
		}
		if err := v.Map[i].Key.EncodeTo(c, key); err != nil {
			return err
		}
		if err := v.Map[i].Value.EncodeTo(c, val); err != nil {
			return err
		}
	}
	return m.FinishMap(c)
}

func (v Value) encodeVariant(c *codec.Context, e codec.Encoder) error {
	ve, err := e.EncodeVariant(c)
	if err != nil {
		return err
	}
	tagEnc, err := ve.EncodeTag(c)
	if err != nil {
		return err
	}
	if err := v.Variant.Tag.EncodeTo(c, tagEnc); err != nil {
		return err
	}
	valEnc, err := ve.EncodeValue(c)
	if err != nil {
		return err
	}
	if err := v.Variant.Value.EncodeTo(c, valEnc); err != nil {
		return err
	}
	return ve.FinishVariant(c)
}

func (v Value) encodeOption(c *codec.Context, e codec.Encoder) error {
	if v.Option == nil {
		return e.EncodeNone(c)
	}
	some, err := e.EncodeSome(c)
	if err != nil {
		return err
	}
	return v.Option.EncodeTo(c, some)
}
