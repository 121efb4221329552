package codec

import "fmt"

// ErrKind enumerates every way encoding or decoding can fail. A single
// closed error type carrying one of these, rather than a family of Go
// error types, matches how this codebase already reports structural
// failures elsewhere.
type ErrKind int

const (
	// EndOfInput means a reader ran out of bytes mid-value.
	EndOfInput ErrKind = iota
	// Overflow means a varint or length value does not fit the target.
	Overflow
	// BadTag means a wire tag byte had an unrecognized kind or value.
	BadTag
	// BadBoolean means a decoded boolean byte was neither 0 nor 1.
	BadBoolean
	// BadCharacter means a decoded rune was not a valid Unicode scalar.
	BadCharacter
	// UTF8Error means decoded bytes were not valid UTF-8.
	UTF8Error
	// AllocError means the attached allocator could not satisfy a
	// request (exhausted buffer or header budget).
	AllocError
	// BadLength means a decoded length prefix was inconsistent with
	// the remaining input or the target collection's constraints.
	BadLength
	// ExpectedOption means a decoder expected an Option discriminant
	// and found something else.
	ExpectedOption
	// MissingVariant means an enum decode found no matching variant
	// tag or field.
	MissingVariant
	// UnknownField means a named or indexed field had no target and
	// could not be skipped.
	UnknownField
	// Custom wraps an arbitrary caller-supplied error via Context.Custom,
	// or a formatted message via Context.Message.
	Custom
)

func (k ErrKind) String() string {
	switch k {
	case EndOfInput:
		return "end of input"
	case Overflow:
		return "overflow"
	case BadTag:
		return "bad tag"
	case BadBoolean:
		return "bad boolean"
	case BadCharacter:
		return "bad character"
	case UTF8Error:
		return "invalid UTF-8"
	case AllocError:
		return "allocation failed"
	case BadLength:
		return "bad length"
	case ExpectedOption:
		return "expected option"
	case MissingVariant:
		return "missing variant"
	case UnknownField:
		return "unknown field"
	case Custom:
		return "custom"
	default:
		return "unknown error"
	}
}

// Error is the one error type every package in this module returns.
// It carries the kind of failure, the byte Mark where it was detected
// (if known), a free-form message, and, for Custom errors, the wrapped
// cause.
type Error struct {
	Off  Mark
	Type ErrKind
	Msg  string
	More error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		if e.Off != 0 {
			return fmt.Sprintf("%s at offset %d", e.Type, e.Off)
		}
		return e.Type.String()
	}
	if e.Off != 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Type, e.Off, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.More }

// newError builds an *Error with the given kind, optional mark, and a
// formatted message.
func newError(mark Mark, kind ErrKind, format string, args ...any) *Error {
	return &Error{Off: mark, Type: kind, Msg: fmt.Sprintf(format, args...)}
}
