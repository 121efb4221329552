package storage

import (
	"testing"

	"modernc.org/codec"
	"modernc.org/codec/stream"
)

func roundTrip(t *testing.T, opts codec.Options, encode func(*codec.Context, *Encoder) error, decode func(*codec.Context, *Decoder) error) {
	t.Helper()
	c := codec.NewContext()
	w := stream.NewHostWriter()
	enc := NewEncoder(w, opts)
	if err := encode(c, enc); err != nil {
		t.Fatalf("encode: %v", err)
	}

	dc := codec.NewContext()
	dec := NewDecoder(stream.NewReader(w.Bytes()), opts)
	if err := decode(dc, dec); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// TestScenarioEncodeBool is scenario A from spec.md §8: storage-format
// false/true encode to the single bytes 0x00/0x01.
func TestScenarioEncodeBool(t *testing.T) {
	opts := codec.Default()
	c := codec.NewContext()

	w := stream.NewHostWriter()
	if err := NewEncoder(w, opts).EncodeBool(c, false); err != nil {
		t.Fatalf("EncodeBool(false): %v", err)
	}
	if got := w.Bytes(); len(got) != 1 || got[0] != 0x00 {
		t.Fatalf("EncodeBool(false) = %#x, want [0x00]", got)
	}

	w2 := stream.NewHostWriter()
	if err := NewEncoder(w2, opts).EncodeBool(c, true); err != nil {
		t.Fatalf("EncodeBool(true): %v", err)
	}
	if got := w2.Bytes(); len(got) != 1 || got[0] != 0x01 {
		t.Fatalf("EncodeBool(true) = %#x, want [0x01]", got)
	}
}

func TestScalarsContinuation(t *testing.T) {
	opts := codec.Default()
	roundTrip(t, opts,
		func(c *codec.Context, e *Encoder) error {
			if err := e.EncodeBool(c, true); err != nil {
				return err
			}
			if err := e.EncodeU32(c, 123456); err != nil {
				return err
			}
			if err := e.EncodeI64(c, -98765); err != nil {
				return err
			}
			return e.EncodeF64(c, 3.5)
		},
		func(c *codec.Context, d *Decoder) error {
			b, err := d.DecodeBool(c)
			if err != nil || !b {
				t.Fatalf("DecodeBool = %v, %v", b, err)
			}
			u, err := d.DecodeU32(c)
			if err != nil || u != 123456 {
				t.Fatalf("DecodeU32 = %v, %v", u, err)
			}
			i, err := d.DecodeI64(c)
			if err != nil || i != -98765 {
				t.Fatalf("DecodeI64 = %v, %v", i, err)
			}
			f, err := d.DecodeF64(c)
			if err != nil || f != 3.5 {
				t.Fatalf("DecodeF64 = %v, %v", f, err)
			}
			return nil
		})
}

func TestScalarsFixed(t *testing.T) {
	opts := codec.Options{ByteOrder: codec.LittleEndian, Integer: codec.Fixed, Length: codec.LengthFixed, Map: codec.MapAsPairs}
	roundTrip(t, opts,
		func(c *codec.Context, e *Encoder) error { return e.EncodeI32(c, -7) },
		func(c *codec.Context, d *Decoder) error {
			v, err := d.DecodeI32(c)
			if err != nil || v != -7 {
				t.Fatalf("DecodeI32 = %v, %v", v, err)
			}
			return nil
		})
}

func TestBytesAndString(t *testing.T) {
	opts := codec.Default()
	roundTrip(t, opts,
		func(c *codec.Context, e *Encoder) error {
			if err := e.EncodeBytes(c, []byte("hello")); err != nil {
				return err
			}
			return e.EncodeString(c, "world")
		},
		func(c *codec.Context, d *Decoder) error {
			b, err := d.DecodeBytes(c)
			if err != nil || string(b) != "hello" {
				t.Fatalf("DecodeBytes = %q, %v", b, err)
			}
			s, err := d.DecodeString(c)
			if err != nil || s != "world" {
				t.Fatalf("DecodeString = %q, %v", s, err)
			}
			return nil
		})
}

func TestSequenceRoundTrip(t *testing.T) {
	opts := codec.Default()
	vals := []uint32{1, 2, 3}
	roundTrip(t, opts,
		func(c *codec.Context, e *Encoder) error {
			seq, err := e.EncodeSequence(c, codec.SizeHint(len(vals)))
			if err != nil {
				return err
			}
			for _, v := range vals {
				next, err := seq.EncodeNext(c)
				if err != nil {
					return err
				}
				if err := next.EncodeU32(c, v); err != nil {
					return err
				}
			}
			return seq.FinishSequence(c)
		},
		func(c *codec.Context, d *Decoder) error {
			seq, err := d.DecodeSequence(c)
			if err != nil {
				return err
			}
			var got []uint32
			for {
				next, ok, err := seq.TryDecodeNext(c)
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				v, err := next.DecodeU32(c)
				if err != nil {
					return err
				}
				got = append(got, v)
			}
			if len(got) != len(vals) {
				t.Fatalf("got %v, want %v", got, vals)
			}
			for i := range vals {
				if got[i] != vals[i] {
					t.Fatalf("got %v, want %v", got, vals)
				}
			}
			return nil
		})
}

func TestPackRoundTrip(t *testing.T) {
	opts := codec.Default()
	roundTrip(t, opts,
		func(c *codec.Context, e *Encoder) error {
			pack, err := e.EncodePack(c)
			if err != nil {
				return err
			}
			enc, err := pack.EncodeNext(c)
			if err != nil {
				return err
			}
			if err := enc.EncodeU8(c, 1); err != nil {
				return err
			}
			enc, err = pack.EncodeNext(c)
			if err != nil {
				return err
			}
			if err := enc.EncodeU8(c, 2); err != nil {
				return err
			}
			return pack.FinishSequence(c)
		},
		func(c *codec.Context, d *Decoder) error {
			a, err := d.DecodeU8(c)
			if err != nil || a != 1 {
				t.Fatalf("first pack byte = %v, %v", a, err)
			}
			b, err := d.DecodeU8(c)
			if err != nil || b != 2 {
				t.Fatalf("second pack byte = %v, %v", b, err)
			}
			return nil
		})
}

// TestScenarioBitwiseFastPathByteCount is property 10 from spec.md §8:
// under native-fixed options, the bitwise fast path writes exactly
// N*sizeof(T) bytes for an N-element slice, with no framing of its own
// (any length prefix is the caller's concern, not TryFastEncode's).
func TestScenarioBitwiseFastPathByteCount(t *testing.T) {
	opts := codec.Options{ByteOrder: codec.NativeOrder, Integer: codec.Fixed, Length: codec.LengthFixed, Map: codec.MapAsPairs}
	c := codec.NewContext()
	w := stream.NewHostWriter()
	e := NewEncoder(w, opts)

	const n, elemSize = 5, 4 // 5 x int32
	raw := make([]byte, n*elemSize)
	for i := range raw {
		raw[i] = byte(i)
	}

	res, err := e.TryFastEncode(c, raw, elemSize)
	if err != nil {
		t.Fatalf("TryFastEncode: %v", err)
	}
	if res != codec.FastOK {
		t.Fatalf("TryFastEncode result = %v, want FastOK under native-fixed options", res)
	}
	if got := len(w.Bytes()); got != n*elemSize {
		t.Fatalf("wrote %d bytes, want %d", got, n*elemSize)
	}
}

// TestScenarioBitwiseFastPathByteCountDecode is property 10's decode
// mirror: under native-fixed options, TryFastDecode reads exactly
// N*sizeof(T) bytes into the caller's buffer and leaves the stream
// positioned right after them.
func TestScenarioBitwiseFastPathByteCountDecode(t *testing.T) {
	opts := codec.Options{ByteOrder: codec.NativeOrder, Integer: codec.Fixed, Length: codec.LengthFixed, Map: codec.MapAsPairs}
	c := codec.NewContext()

	const n, elemSize = 5, 4 // 5 x int32
	want := make([]byte, n*elemSize)
	for i := range want {
		want[i] = byte(i + 1)
	}
	// A trailing byte proves TryFastDecode stops exactly at n*elemSize
	// rather than draining the whole reader.
	buf := append(append([]byte(nil), want...), 0xff)

	dec := NewDecoder(stream.NewReader(buf), opts)
	raw := make([]byte, n*elemSize)
	res, err := dec.TryFastDecode(c, raw, elemSize)
	if err != nil {
		t.Fatalf("TryFastDecode: %v", err)
	}
	if res != codec.FastOK {
		t.Fatalf("TryFastDecode result = %v, want FastOK under native-fixed options", res)
	}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("raw[%d] = %#x, want %#x", i, raw[i], want[i])
		}
	}
	trailer, err := dec.DecodeU8(c)
	if err != nil || trailer != 0xff {
		t.Fatalf("trailing byte = %v, %v, want 0xff untouched", trailer, err)
	}
}

// point is a hand-written fixture standing in for a derived
// implementation, exercising the Encode/Decode contract end to end.
type point struct {
	X, Y int32
}

func (p *point) EncodeTo(c *codec.Context, e codec.Encoder) error {
	if err := e.EncodeI32(c, p.X); err != nil {
		return err
	}
	return e.EncodeI32(c, p.Y)
}

func (p *point) DecodeFrom(c *codec.Context, d codec.Decoder) error {
	x, err := d.DecodeI32(c)
	if err != nil {
		return err
	}
	y, err := d.DecodeI32(c)
	if err != nil {
		return err
	}
	p.X, p.Y = x, y
	return nil
}

func TestDerivedTypeRoundTrip(t *testing.T) {
	opts := codec.Default()
	c := codec.NewContext()
	w := stream.NewHostWriter()
	enc := NewEncoder(w, opts)

	in := &point{X: -3, Y: 42}
	if err := in.EncodeTo(c, enc); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}

	dc := codec.NewContext()
	dec := NewDecoder(stream.NewReader(w.Bytes()), opts)
	out := &point{}
	if err := out.DecodeFrom(dc, dec); err != nil {
		t.Fatalf("DecodeFrom: %v", err)
	}
	if *out != *in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}
