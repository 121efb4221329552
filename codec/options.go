package codec

// ByteOrder selects how fixed-width integers are laid out.
type ByteOrder int

const (
	// NativeOrder uses the host's native byte order.
	NativeOrder ByteOrder = iota
	LittleEndian
	BigEndian
)

// IntMode selects how integers (other than lengths) are encoded.
type IntMode int

const (
	// Continuation uses the 7-bit continuation varint encoding.
	Continuation IntMode = iota
	// Fixed uses the integer width's raw byte representation.
	Fixed
)

// LengthMode selects how length prefixes (sequences, maps, byte
// strings) are encoded. It shares the IntMode vocabulary but is kept as
// a distinct type so callers can vary integer and length encoding
// independently, as spec.md's options word allows.
type LengthMode int

const (
	LengthContinuation LengthMode = iota
	LengthFixed
)

// MapMode selects how map entries are laid out.
type MapMode int

const (
	// MapAsSequence encodes a map as a sequence of 2*len entries,
	// alternating keys and values.
	MapAsSequence MapMode = iota
	// MapAsPairs encodes a map as a sequence of len (key, value) pairs.
	MapAsPairs
)

// Options bundles every compile-time decision the original design makes
// with const generics into one runtime-constructible struct. Passed by
// value to format constructors, exactly as Options are passed to
// dbm.DB's create/open functions.
type Options struct {
	ByteOrder ByteOrder
	Integer   IntMode
	Length    LengthMode
	Map       MapMode
}

// Default returns the Options used when none are supplied: native byte
// order, continuation integer and length encoding, maps as pair
// sequences.
func Default() Options {
	return Options{
		ByteOrder: NativeOrder,
		Integer:   Continuation,
		Length:    LengthContinuation,
		Map:       MapAsPairs,
	}
}

// NativeFixed reports whether every scalar in o is laid out exactly as
// its in-memory representation: native byte order, fixed integers, and
// fixed lengths. Only then is the bitwise fast path (storage package)
// eligible.
func (o Options) NativeFixed() bool {
	return o.ByteOrder == NativeOrder && o.Integer == Fixed && o.Length == LengthFixed
}
