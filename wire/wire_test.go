package wire

import (
	"bytes"
	"testing"

	"modernc.org/codec"
	"modernc.org/codec/stream"
)

// TestScenarioBoolTag exercises scenario B: tag encoding + decoding of
// booleans, including the BadBoolean failure for an unrecognized value.
func TestScenarioBoolTag(t *testing.T) {
	c := codec.NewContext()
	w := stream.NewHostWriter()
	e := NewEncoder(w)

	if err := e.EncodeBool(c, true); err != nil {
		t.Fatalf("EncodeBool(true): %v", err)
	}
	if got := w.Bytes(); len(got) != 1 || got[0] != 0x61 {
		t.Fatalf("EncodeBool(true) = %#x, want 0x61", got)
	}

	d := NewDecoder(stream.NewReader([]byte{0x61}))
	if v, err := d.DecodeBool(codec.NewContext()); err != nil || !v {
		t.Fatalf("DecodeBool(0x61) = %v, %v", v, err)
	}

	d = NewDecoder(stream.NewReader([]byte{0x60}))
	if v, err := d.DecodeBool(codec.NewContext()); err != nil || v {
		t.Fatalf("DecodeBool(0x60) = %v, %v", v, err)
	}

	d = NewDecoder(stream.NewReader([]byte{0x62}))
	_, err := d.DecodeBool(codec.NewContext())
	if err == nil {
		t.Fatalf("DecodeBool(0x62) should fail")
	}
	if err.(*codec.Error).Type != codec.BadBoolean {
		t.Fatalf("got %v, want BadBoolean", err)
	}
}

// TestScenarioSequenceU32 exercises scenario C.
func TestScenarioSequenceU32(t *testing.T) {
	c := codec.NewContext()
	w := stream.NewHostWriter()
	e := NewEncoder(w)

	seq, err := e.EncodeSequence(c, codec.SizeHint(3))
	if err != nil {
		t.Fatalf("EncodeSequence: %v", err)
	}
	for _, v := range []uint32{1, 2, 3} {
		next, err := seq.EncodeNext(c)
		if err != nil {
			t.Fatalf("EncodeNext: %v", err)
		}
		if err := next.EncodeU32(c, v); err != nil {
			t.Fatalf("EncodeU32: %v", err)
		}
	}
	if err := seq.FinishSequence(c); err != nil {
		t.Fatalf("FinishSequence: %v", err)
	}

	want := []byte{0x43, 0x61, 0x62, 0x63}
	if !bytes.Equal(w.Bytes(), want) {
		t.Fatalf("encoded = %#x, want %#x", w.Bytes(), want)
	}

	d := NewDecoder(stream.NewReader(w.Bytes()))
	dc := codec.NewContext()
	dseq, err := d.DecodeSequence(dc)
	if err != nil {
		t.Fatalf("DecodeSequence: %v", err)
	}
	var got []uint32
	for {
		next, ok, err := dseq.TryDecodeNext(dc)
		if err != nil {
			t.Fatalf("TryDecodeNext: %v", err)
		}
		if !ok {
			break
		}
		v, err := next.DecodeU32(dc)
		if err != nil {
			t.Fatalf("DecodeU32: %v", err)
		}
		got = append(got, v)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

// TestScenarioOption exercises scenario D.
func TestScenarioOption(t *testing.T) {
	c := codec.NewContext()

	w := stream.NewHostWriter()
	e := NewEncoder(w)
	if err := e.EncodeNone(c); err != nil {
		t.Fatalf("EncodeNone: %v", err)
	}
	if got := w.Bytes(); len(got) != 1 || got[0] != 0x40 {
		t.Fatalf("EncodeNone = %#x, want 0x40", got)
	}

	w2 := stream.NewHostWriter()
	e2 := NewEncoder(w2)
	some, err := e2.EncodeSome(c)
	if err != nil {
		t.Fatalf("EncodeSome: %v", err)
	}
	if err := some.EncodeU32(c, 7); err != nil {
		t.Fatalf("EncodeU32: %v", err)
	}
	want := []byte{0x41, 0x67}
	if !bytes.Equal(w2.Bytes(), want) {
		t.Fatalf("encoded = %#x, want %#x", w2.Bytes(), want)
	}

	d := NewDecoder(stream.NewReader(w2.Bytes()))
	dc := codec.NewContext()
	dec, present, err := d.DecodeOption(dc)
	if err != nil || !present {
		t.Fatalf("DecodeOption = %v, %v, %v", dec, present, err)
	}
	v, err := dec.DecodeU32(dc)
	if err != nil || v != 7 {
		t.Fatalf("DecodeU32 = %v, %v", v, err)
	}
}

func TestSkipAny(t *testing.T) {
	c := codec.NewContext()
	w := stream.NewHostWriter()
	e := NewEncoder(w)

	seq, err := e.EncodeSequence(c, codec.SizeHint(2))
	if err != nil {
		t.Fatalf("EncodeSequence: %v", err)
	}
	next, _ := seq.EncodeNext(c)
	next.EncodeBytes(c, []byte("hello"))
	next, _ = seq.EncodeNext(c)
	next.EncodeU32(c, 42)
	seq.FinishSequence(c)

	if err := e.EncodeBool(c, true); err != nil {
		t.Fatalf("EncodeBool: %v", err)
	}

	d := NewDecoder(stream.NewReader(w.Bytes()))
	dc := codec.NewContext()
	if err := d.Skip(dc); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	v, err := d.DecodeBool(dc)
	if err != nil || !v {
		t.Fatalf("DecodeBool after skip = %v, %v", v, err)
	}
}

// TestFinishMapDrainsUnknownTrailingFields is property 9 from spec.md
// §8: a map carrying more fields than the reader recognizes must still
// leave the stream positioned correctly for whatever value follows,
// once the reader calls FinishMap after decoding only the fields it
// knows about. This is the scenario a derived struct decode hits
// whenever it sees a newer, field-extended message.
func TestFinishMapDrainsUnknownTrailingFields(t *testing.T) {
	c := codec.NewContext()
	w := stream.NewHostWriter()
	e := NewEncoder(w)

	m, err := e.EncodeMap(c, codec.SizeHint(3))
	if err != nil {
		t.Fatalf("EncodeMap: %v", err)
	}
	entries := []struct {
		key string
		val uint32
	}{
		{"known", 1},
		{"future_a", 2},
		{"future_b", 3},
	}
	for _, ent := range entries {
		k, v, err := m.EncodeEntry(c)
		if err != nil {
			t.Fatalf("EncodeEntry: %v", err)
		}
		if err := k.EncodeString(c, ent.key); err != nil {
			t.Fatalf("EncodeString(key): %v", err)
		}
		if err := v.EncodeU32(c, ent.val); err != nil {
			t.Fatalf("EncodeU32(value): %v", err)
		}
	}
	if err := m.FinishMap(c); err != nil {
		t.Fatalf("FinishMap (encode side): %v", err)
	}

	if err := e.EncodeBool(c, true); err != nil {
		t.Fatalf("EncodeBool: %v", err)
	}

	d := NewDecoder(stream.NewReader(w.Bytes()))
	dc := codec.NewContext()
	md, err := d.DecodeMap(dc)
	if err != nil {
		t.Fatalf("DecodeMap: %v", err)
	}

	// A derived struct recognizing only "known" decodes just that one
	// entry, then calls FinishMap to drain future_a/future_b.
	key, val, ok, err := md.TryDecodeEntry(dc)
	if err != nil || !ok {
		t.Fatalf("TryDecodeEntry (first): ok=%v err=%v", ok, err)
	}
	gotKey, err := key.DecodeString(dc)
	if err != nil || gotKey != "known" {
		t.Fatalf("DecodeString(key) = %q, %v", gotKey, err)
	}
	gotVal, err := val.DecodeU32(dc)
	if err != nil || gotVal != 1 {
		t.Fatalf("DecodeU32(value) = %v, %v", gotVal, err)
	}

	if err := md.FinishMap(dc); err != nil {
		t.Fatalf("FinishMap (decode side): %v", err)
	}

	next, err := d.DecodeBool(dc)
	if err != nil || !next {
		t.Fatalf("DecodeBool after FinishMap = %v, %v, want true with no error", next, err)
	}
}
