package bitstream

import (
	"testing"

	"github.com/cocosip/go-vc5-codec/vc5/stream"
)

// TestMask tests the right-justified bit mask.
func TestMask(t *testing.T) {
	tests := []struct {
		count uint
		mask  uint32
	}{
		{0, 0x00000000},
		{1, 0x00000001},
		{8, 0x000000FF},
		{16, 0x0000FFFF},
		{31, 0x7FFFFFFF},
		{32, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		if got := Mask(tt.count); got != tt.mask {
			t.Errorf("Mask(%d) = 0x%08X, want 0x%08X", tt.count, got, tt.mask)
		}
	}
}

// TestPutGetBits tests that bit fields written to the stream read back
// with the same values across word boundaries.
func TestPutGetBits(t *testing.T) {
	fields := []struct {
		value uint32
		count uint
	}{
		{0x1, 1},
		{0x3, 2},
		{0x5A, 7},
		{0x12345, 20},
		{0xFFFFFFFF, 32},
		{0x0, 5},
		{0x7FF, 11},
		{0xABCDE, 24},
	}

	buffer := stream.NewBuffer()
	w := New(buffer)
	for _, field := range fields {
		if err := w.PutBits(field.value, field.count); err != nil {
			t.Fatalf("PutBits(0x%X, %d) failed: %v", field.value, field.count, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	r := New(stream.FromBytes(buffer.Bytes()))
	for _, field := range fields {
		want := field.value & Mask(field.count)
		if got := r.GetBits(field.count); got != want {
			t.Errorf("GetBits(%d) = 0x%X, want 0x%X", field.count, got, want)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected bitstream error: %v", err)
	}
}

// TestNetworkByteOrder tests that the wire order is big-endian.
func TestNetworkByteOrder(t *testing.T) {
	buffer := stream.NewBuffer()
	w := New(buffer)
	if err := w.PutLong(0x1A2B00C8); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := []byte{0x1A, 0x2B, 0x00, 0xC8}
	got := buffer.Bytes()
	if len(got) != len(want) {
		t.Fatalf("wrote %d bytes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = 0x%02X, want 0x%02X", i, got[i], want[i])
		}
	}
}

// TestGetBitsUnderflow tests the sticky underflow error.
func TestGetBitsUnderflow(t *testing.T) {
	r := New(stream.FromBytes([]byte{0xAB, 0xCD}))

	r.GetBits(32)
	if r.Err() == nil {
		t.Fatal("expected underflow error")
	}
	if got := r.GetBits(8); got != 0 {
		t.Errorf("read after error = 0x%X, want 0", got)
	}
}

// TestAlignment tests byte and word alignment on the read side.
func TestAlignment(t *testing.T) {
	buffer := stream.NewBuffer()
	w := New(buffer)
	if err := w.PutBits(0x5, 3); err != nil {
		t.Fatal(err)
	}
	if err := w.PadByte(); err != nil {
		t.Fatal(err)
	}
	if err := w.PutBits(0xAB, 8); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := New(stream.FromBytes(buffer.Bytes()))
	if got := r.GetBits(3); got != 0x5 {
		t.Errorf("GetBits(3) = 0x%X, want 0x5", got)
	}
	r.AlignByte()
	if got := r.GetBits(8); got != 0xAB {
		t.Errorf("aligned byte = 0x%X, want 0xAB", got)
	}
}

// TestSegmentPadding tests that segment padding restores four-byte
// alignment of the cumulative stream position.
func TestSegmentPadding(t *testing.T) {
	buffer := stream.NewBuffer()
	w := New(buffer)
	if err := w.PutBits(0x3, 2); err != nil {
		t.Fatal(err)
	}
	if err := w.PadSegment(); err != nil {
		t.Fatal(err)
	}
	if err := w.PutLong(0xCAFEBABE); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	if len(buffer.Bytes())%4 != 0 {
		t.Fatalf("stream length %d is not segment aligned", len(buffer.Bytes()))
	}

	r := New(stream.FromBytes(buffer.Bytes()))
	r.GetBits(2)
	r.AlignSegment()
	if got := r.GetLong(); got != 0xCAFEBABE {
		t.Errorf("word after alignment = 0x%08X, want 0xCAFEBABE", got)
	}
}

// TestSampleOffsetStack tests the depth limit and balance of the
// sample-offset stack.
func TestSampleOffsetStack(t *testing.T) {
	w := New(stream.NewBuffer())

	for i := 0; i < MaxSampleOffsetCount; i++ {
		if err := w.PushSampleOffset(int16(i)); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}
	if err := w.PushSampleOffset(99); err == nil {
		t.Error("push on a full stack should fail")
	}

	for i := MaxSampleOffsetCount - 1; i >= 0; i-- {
		tag, _, err := w.PopSampleOffset()
		if err != nil {
			t.Fatalf("pop failed: %v", err)
		}
		if tag != int16(i) {
			t.Errorf("popped tag %d, want %d", tag, i)
		}
	}
	if _, _, err := w.PopSampleOffset(); err == nil {
		t.Error("pop of an empty stack should fail")
	}
	if w.SampleOffsetDepth() != 0 {
		t.Errorf("stack depth = %d, want 0", w.SampleOffsetDepth())
	}
}
