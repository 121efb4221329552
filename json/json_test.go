package json

import (
	"testing"

	"modernc.org/codec"
	"modernc.org/codec/stream"
)

func encode(t *testing.T, f func(*codec.Context, *Encoder) error) string {
	t.Helper()
	c := codec.NewContext()
	w := stream.NewHostWriter()
	e := NewEncoder(w)
	if err := f(c, e); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(w.Bytes())
}

func TestEncodeScalars(t *testing.T) {
	if got := encode(t, func(c *codec.Context, e *Encoder) error { return e.EncodeBool(c, true) }); got != "true" {
		t.Fatalf("got %q", got)
	}
	if got := encode(t, func(c *codec.Context, e *Encoder) error { return e.EncodeI32(c, -42) }); got != "-42" {
		t.Fatalf("got %q", got)
	}
	if got := encode(t, func(c *codec.Context, e *Encoder) error { return e.EncodeF64(c, 1.5) }); got != "1.5" {
		t.Fatalf("got %q", got)
	}
	if got := encode(t, func(c *codec.Context, e *Encoder) error { return e.EncodeEmpty(c) }); got != "null" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeStringEscaping(t *testing.T) {
	got := encode(t, func(c *codec.Context, e *Encoder) error {
		return e.EncodeString(c, "a\"b\\c\nd\t\x01")
	})
	want := `"a\"b\\c\nd\t"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeSurrogatePair(t *testing.T) {
	got := encode(t, func(c *codec.Context, e *Encoder) error {
		return e.EncodeString(c, "\U0001F600")
	})
	want := "\"\\ud83d\\ude00\""
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecodeSurrogatePair(t *testing.T) {
	c := codec.NewContext()
	d := NewDecoder(stream.NewReader([]byte("\"\\ud83d\\ude00\"")))
	s, err := d.DecodeString(c)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	if s != "\U0001F600" {
		t.Fatalf("got %q", s)
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	c := codec.NewContext()
	w := stream.NewHostWriter()
	e := NewEncoder(w)

	seq, err := e.EncodeSequence(c, codec.SizeHint(3))
	if err != nil {
		t.Fatalf("EncodeSequence: %v", err)
	}
	for _, v := range []int32{1, 2, 3} {
		next, err := seq.EncodeNext(c)
		if err != nil {
			t.Fatalf("EncodeNext: %v", err)
		}
		if err := next.EncodeI32(c, v); err != nil {
			t.Fatalf("EncodeI32: %v", err)
		}
	}
	if err := seq.FinishSequence(c); err != nil {
		t.Fatalf("FinishSequence: %v", err)
	}
	if got := string(w.Bytes()); got != "[1,2,3]" {
		t.Fatalf("got %q", got)
	}

	d := NewDecoder(stream.NewReader(w.Bytes()))
	dc := codec.NewContext()
	dseq, err := d.DecodeSequence(dc)
	if err != nil {
		t.Fatalf("DecodeSequence: %v", err)
	}
	var got []int32
	for {
		next, ok, err := dseq.TryDecodeNext(dc)
		if err != nil {
			t.Fatalf("TryDecodeNext: %v", err)
		}
		if !ok {
			break
		}
		v, err := next.DecodeI32(dc)
		if err != nil {
			t.Fatalf("DecodeI32: %v", err)
		}
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestMapRoundTrip(t *testing.T) {
	c := codec.NewContext()
	w := stream.NewHostWriter()
	e := NewEncoder(w)

	m, err := e.EncodeMap(c, codec.SizeHint(1))
	if err != nil {
		t.Fatalf("EncodeMap: %v", err)
	}
	key, val, err := m.EncodeEntry(c)
	if err != nil {
		t.Fatalf("EncodeEntry: %v", err)
	}
	if err := key.EncodeString(c, "x"); err != nil {
		t.Fatalf("EncodeString: %v", err)
	}
	if err := val.EncodeI32(c, 7); err != nil {
		t.Fatalf("EncodeI32: %v", err)
	}
	if err := m.FinishMap(c); err != nil {
		t.Fatalf("FinishMap: %v", err)
	}
	if got := string(w.Bytes()); got != `{"x":7}` {
		t.Fatalf("got %q", got)
	}

	d := NewDecoder(stream.NewReader(w.Bytes()))
	dc := codec.NewContext()
	dm, err := d.DecodeMap(dc)
	if err != nil {
		t.Fatalf("DecodeMap: %v", err)
	}
	key2, val2, ok, err := dm.TryDecodeEntry(dc)
	if err != nil || !ok {
		t.Fatalf("TryDecodeEntry: %v, %v", ok, err)
	}
	ks, err := key2.DecodeString(dc)
	if err != nil || ks != "x" {
		t.Fatalf("DecodeString = %q, %v", ks, err)
	}
	vi, err := val2.DecodeI32(dc)
	if err != nil || vi != 7 {
		t.Fatalf("DecodeI32 = %v, %v", vi, err)
	}
}

func TestDecodeAnyRoundTripsThroughVisitor(t *testing.T) {
	c := codec.NewContext()
	d := NewDecoder(stream.NewReader([]byte(`[1,"two",true,null]`)))
	v, err := d.DecodeAny(c, captureVisitor{})
	if err != nil {
		t.Fatalf("DecodeAny: %v", err)
	}
	got, ok := v.([]any)
	if !ok || len(got) != 4 {
		t.Fatalf("got %#v", v)
	}
}

// captureVisitor builds a plain Go value tree out of DecodeAny calls,
// used only to exercise the generic self-describing decode path.
type captureVisitor struct{}

func (captureVisitor) VisitUnit(c *codec.Context) (any, error)   { return nil, nil }
func (captureVisitor) VisitBool(c *codec.Context, v bool) (any, error) { return v, nil }
func (captureVisitor) VisitChar(c *codec.Context, v rune) (any, error) { return v, nil }
func (captureVisitor) VisitNumber(c *codec.Context, v codec.Number) (any, error) { return v, nil }
func (captureVisitor) VisitBytes(c *codec.Context, hint codec.SizeHint, v []byte) (any, error) {
	return v, nil
}
func (captureVisitor) VisitString(c *codec.Context, hint codec.SizeHint, v string) (any, error) {
	return v, nil
}
func (captureVisitor) VisitSequence(c *codec.Context, sd codec.SequenceDecoder) (any, error) {
	var out []any
	for {
		next, ok, err := sd.TryDecodeNext(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		v, err := next.DecodeAny(c, captureVisitor{})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}
func (captureVisitor) VisitMap(c *codec.Context, md codec.MapDecoder) (any, error) {
	out := map[any]any{}
	for {
		key, value, ok, err := md.TryDecodeEntry(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		k, err := key.DecodeAny(c, captureVisitor{})
		if err != nil {
			return nil, err
		}
		v, err := value.DecodeAny(c, captureVisitor{})
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
}
func (captureVisitor) VisitVariant(c *codec.Context, vd codec.VariantDecoder) (any, error) {
	return nil, nil
}
func (captureVisitor) VisitOption(c *codec.Context, present bool, d codec.Decoder) (any, error) {
	if !present {
		return nil, nil
	}
	return d.DecodeAny(c, captureVisitor{})
}
