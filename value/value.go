// Package value implements the in-memory, self-describing value tree:
// a tagged sum that can both be built from any decoder's decode_any and
// itself act as an encoder target and a decoder, for derive code that
// needs to buffer a value before knowing its final destination type.
package value

import "modernc.org/codec"

// Kind discriminates which field of a Value is populated.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindChar
	KindNumber
	KindBytes
	KindString
	KindSequence
	KindMap
	KindVariant
	KindOption
)

// Entry is one key/value pair of a Map value.
type Entry struct {
	Key   Value
	Value Value
}

// Variant is the (tag, value) pair of a Variant value.
type Variant struct {
	Tag   Value
	Value Value
}

// Value is the tagged sum: exactly one of its fields is meaningful,
// selected by Kind. It owns all its storage as ordinary Go values,
// unlike the allocator-backed original — Go's garbage collector already
// manages this memory, so there is no need to thread an *alloc.Slice
// through every node the way a no_std build must.
type Value struct {
	Kind     Kind
	Bool     bool
	Char     rune
	Number   codec.Number
	Bytes    []byte
	Str      string
	Sequence []Value
	Map      []Entry
	Variant  *Variant
	Option   *Value // nil means None; non-nil points at the Some payload
}

func Unit() Value                 { return Value{Kind: KindUnit} }
func Bool(v bool) Value           { return Value{Kind: KindBool, Bool: v} }
func Char(v rune) Value           { return Value{Kind: KindChar, Char: v} }
func Number(v codec.Number) Value { return Value{Kind: KindNumber, Number: v} }
func Bytes(v []byte) Value        { return Value{Kind: KindBytes, Bytes: v} }
func String(v string) Value       { return Value{Kind: KindString, Str: v} }
func Sequence(v []Value) Value    { return Value{Kind: KindSequence, Sequence: v} }
func Map(v []Entry) Value         { return Value{Kind: KindMap, Map: v} }

func VariantOf(tag, val Value) Value {
	return Value{Kind: KindVariant, Variant: &Variant{Tag: tag, Value: val}}
}

func None() Value { return Value{Kind: KindOption} }

func Some(v Value) Value {
	return Value{Kind: KindOption, Option: &v}
}

// TypeHint names the value's kind, for error messages.
func (v Value) TypeHint() string {
	switch v.Kind {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindNumber:
		return "number"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindVariant:
		return "variant"
	case KindOption:
		return "option"
	default:
		return "unknown"
	}
}

func mismatch(c *codec.Context, v Value, want string) error {
	return c.Report(&codec.Error{Type: codec.BadTag, Msg: "value: expected " + want + ", got " + v.TypeHint()})
}
