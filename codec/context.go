package codec

import (
	"fmt"
	"strings"

	"modernc.org/codec/alloc"
)

// MaxTraceDepth bounds how many path steps Context.Path will render
// before collapsing the remainder into a single "capped steps" marker.
const MaxTraceDepth = 64

type stepKind int

const (
	stepStruct stepKind = iota
	stepEnum
	stepVariant
	stepNamedField
	stepUnnamedField
	stepMapKey
	stepSequenceIndex
)

type step struct {
	kind  stepKind
	name  string
	index int
}

func (s step) String() string {
	switch s.kind {
	case stepStruct:
		return s.name
	case stepEnum:
		return s.name
	case stepVariant:
		return "." + s.name
	case stepNamedField:
		return "." + s.name
	case stepUnnamedField:
		return fmt.Sprintf(".%d", s.index)
	case stepMapKey:
		return fmt.Sprintf("[%s]", s.name)
	case stepSequenceIndex:
		return fmt.Sprintf("[%d]", s.index)
	default:
		return "?"
	}
}

// Context carries per-call decode/encode state: the attached scratch
// allocator, the current byte position, and (when tracing is enabled) a
// path stack used to render precise error locations. A Context is not
// safe for concurrent use; it is meant to be created once per
// encode/decode call, exactly as *alloc.Slice is.
type Context struct {
	alloc *alloc.Slice
	trace bool
	pos   Mark
	path  []step
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithAlloc attaches a scratch allocator, returned by Context.Alloc. The
// format drivers in this module do not read it.
func WithAlloc(s *alloc.Slice) Option {
	return func(c *Context) { c.alloc = s }
}

// WithTrace enables path tracking for richer error messages, at the
// cost of maintaining the path stack on every enter/leave call.
func WithTrace(enabled bool) Option {
	return func(c *Context) { c.trace = enabled }
}

// NewContext constructs a Context with the given options applied.
func NewContext(opts ...Option) *Context {
	c := &Context{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Alloc returns the attached scratch allocator, or nil if none was
// configured.
func (c *Context) Alloc() *alloc.Slice { return c.alloc }

// Mark returns the current position as an opaque snapshot.
func (c *Context) Mark() Mark { return c.pos }

// Advance moves the current position forward by n bytes, called by
// readers/writers as they consume or produce input.
func (c *Context) Advance(n int) { c.pos += Mark(n) }

// Report returns err annotated with the current mark; a nil err is
// returned as nil. Nothing is stored on the Context.
func (c *Context) Report(err error) error {
	return c.MarkedReport(c.pos, err)
}

// MarkedReport returns err annotated with the given mark rather than the
// context's current position; a nil err is returned as nil.
func (c *Context) MarkedReport(m Mark, err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*Error); ok {
		if ce.Off == 0 {
			ce.Off = m
		}
		return ce
	}
	return &Error{Off: m, Type: Custom, Msg: err.Error(), More: err}
}

// Custom wraps an arbitrary caller error as a Context error, the Go
// equivalent of the original's associated-type error adaptation.
func (c *Context) Custom(err error) error {
	return c.Report(&Error{Type: Custom, Msg: err.Error(), More: err})
}

// Message formats and reports a Custom error.
func (c *Context) Message(format string, args ...any) error {
	return c.Report(newError(0, Custom, format, args...))
}

// MarkedMessage formats and reports a Custom error at a specific mark.
func (c *Context) MarkedMessage(m Mark, format string, args ...any) error {
	return c.MarkedReport(m, newError(0, Custom, format, args...))
}

func (c *Context) push(s step) {
	if !c.trace {
		return
	}
	c.path = append(c.path, s)
}

func (c *Context) pop() {
	if !c.trace || len(c.path) == 0 {
		return
	}
	c.path = c.path[:len(c.path)-1]
}

func (c *Context) EnterStruct(name string)            { c.push(step{kind: stepStruct, name: name}) }
func (c *Context) LeaveStruct()                        { c.pop() }
func (c *Context) EnterEnum(name string)               { c.push(step{kind: stepEnum, name: name}) }
func (c *Context) LeaveEnum()                          { c.pop() }
func (c *Context) EnterVariant(name string)             { c.push(step{kind: stepVariant, name: name}) }
func (c *Context) LeaveVariant()                       { c.pop() }
func (c *Context) EnterNamedField(name string)          { c.push(step{kind: stepNamedField, name: name}) }
func (c *Context) EnterUnnamedField(index int)          { c.push(step{kind: stepUnnamedField, index: index}) }
func (c *Context) LeaveField()                         { c.pop() }
func (c *Context) EnterMapKey(key string)              { c.push(step{kind: stepMapKey, name: key}) }
func (c *Context) LeaveMapKey()                        { c.pop() }
func (c *Context) EnterSequenceIndex(index int)        { c.push(step{kind: stepSequenceIndex, index: index}) }
func (c *Context) LeaveSequenceIndex()                 { c.pop() }

// Path renders the current trace path as a dotted/bracketed string,
// e.g. "Point.x" or "[2].name". Beyond MaxTraceDepth steps, the tail is
// collapsed into a single "… N capped steps" marker so pathological
// recursion can't make an error message unbounded.
func (c *Context) Path() string {
	if len(c.path) == 0 {
		return ""
	}

	steps := c.path
	var tail string
	if len(steps) > MaxTraceDepth {
		capped := len(steps) - MaxTraceDepth
		steps = steps[:MaxTraceDepth]
		tail = fmt.Sprintf(" … %d capped steps", capped)
	}

	var b strings.Builder
	for i, s := range steps {
		str := s.String()
		if i > 0 && s.kind != stepMapKey && s.kind != stepSequenceIndex && s.kind != stepUnnamedField {
			b.WriteByte('.')
			b.WriteString(strings.TrimPrefix(str, "."))
		} else {
			b.WriteString(str)
		}
	}
	b.WriteString(tail)
	return b.String()
}

func (c *Context) wrapf(kind ErrKind, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p := c.Path(); p != "" {
		msg = p + ": " + msg
	}
	return c.Report(&Error{Type: kind, Msg: msg})
}

// InvalidVariantTag reports that typeName's enum decode saw a tag that
// matched no known variant.
func (c *Context) InvalidVariantTag(typeName string, tag any) error {
	return c.wrapf(MissingVariant, "%s: invalid variant tag %v", typeName, tag)
}

// ExpectedTag reports that a decoder expected a specific tag value and
// found a different one.
func (c *Context) ExpectedTag(typeName string, want, got any) error {
	return c.wrapf(BadTag, "%s: expected tag %v, got %v", typeName, want, got)
}

// Uninhabitable reports an attempt to decode a type with no valid
// values (e.g. an enum with zero variants).
func (c *Context) Uninhabitable(typeName string) error {
	return c.wrapf(MissingVariant, "%s: type is uninhabitable", typeName)
}

// InvalidFieldTag reports that a struct decode saw a field tag with no
// matching field.
func (c *Context) InvalidFieldTag(typeName string, tag any) error {
	return c.wrapf(UnknownField, "%s: invalid field tag %v", typeName, tag)
}

// InvalidFieldStringTag is InvalidFieldTag for string-keyed fields.
func (c *Context) InvalidFieldStringTag(typeName string, tag string) error {
	return c.wrapf(UnknownField, "%s: invalid field %q", typeName, tag)
}

// MissingVariantField reports that a variant was missing a required
// field during decode.
func (c *Context) MissingVariantField(typeName, field string) error {
	return c.wrapf(MissingVariant, "%s: variant missing field %q", typeName, field)
}

// MissingVariantTag reports that an enum encode was asked to encode a
// variant it has no tag for.
func (c *Context) MissingVariantTag(typeName string) error {
	return c.wrapf(MissingVariant, "%s: missing variant tag", typeName)
}

// InvalidVariantFieldTag reports that a variant's field tag matched no
// known field.
func (c *Context) InvalidVariantFieldTag(typeName, variant string, tag any) error {
	return c.wrapf(UnknownField, "%s::%s: invalid field tag %v", typeName, variant, tag)
}
