package varint

import (
	"math/rand"
	"testing"
)

func TestZigZagRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 2, -2, 63, -64, 1 << 40, -(1 << 40)}
	for _, c := range cases {
		if got := UnZigZag(ZigZag(c)); got != c {
			t.Errorf("ZigZag round trip for %d: got %d", c, got)
		}
	}
}

func TestContinuationRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		v := rng.Uint64()
		if i < 20 {
			v = uint64(i)
		}
		buf := AppendContinuation(nil, v)
		if len(buf) != SizeContinuation(v) {
			t.Fatalf("SizeContinuation(%d) = %d, len(encoded) = %d", v, SizeContinuation(v), len(buf))
		}
		got, n, err := DecodeContinuation(buf, MaxContinuationLen64)
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if n != len(buf) {
			t.Fatalf("decode %d consumed %d bytes, want %d", v, n, len(buf))
		}
		if got != v {
			t.Fatalf("decode %d = %d", v, got)
		}
	}
}

func TestContinuationSmallEncodesToOneByte(t *testing.T) {
	for v := uint64(0); v < 0x80; v++ {
		buf := AppendContinuation(nil, v)
		if len(buf) != 1 {
			t.Fatalf("AppendContinuation(%d) = %v, want 1 byte", v, buf)
		}
	}
}

func TestContinuationOverflow(t *testing.T) {
	// Eleven bytes, every one with the continuation bit set: never
	// terminates within the 64-bit budget.
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0x80
	}
	_, _, err := DecodeContinuation(buf, MaxContinuationLen64)
	if err == nil {
		t.Fatalf("expected overflow error")
	}
	if err.(*Error).Kind != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestContinuationUnderflow(t *testing.T) {
	buf := []byte{0x80, 0x80}
	_, _, err := DecodeContinuation(buf, MaxContinuationLen64)
	if err == nil {
		t.Fatalf("expected underflow error")
	}
	if err.(*Error).Kind != ErrUnderflow {
		t.Fatalf("got %v, want ErrUnderflow", err)
	}
}

func TestFixedRoundTrip(t *testing.T) {
	for _, order := range []ByteOrder{LittleEndian, BigEndian} {
		for _, width := range []int{1, 2, 4, 8} {
			var v uint64 = 0x0102030405060708
			buf := AppendFixed64(nil, v, width, order)
			if len(buf) != width {
				t.Fatalf("width %d: got %d bytes", width, len(buf))
			}
			got, err := DecodeFixed64(buf, width, order)
			if err != nil {
				t.Fatalf("width %d: %v", width, err)
			}
			want := v & ((uint64(1) << (uint(width) * 8)) - 1)
			if width == 8 {
				want = v
			}
			if got != want {
				t.Fatalf("width %d order %d: got %#x, want %#x", width, order, got, want)
			}
		}
	}
}

func TestFixedUnderflow(t *testing.T) {
	_, err := DecodeFixed64([]byte{1, 2}, 4, LittleEndian)
	if err == nil {
		t.Fatalf("expected underflow error")
	}
}
