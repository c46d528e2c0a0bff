package syntax

import (
	"testing"

	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
)

// TestSegmentRoundTrip writes a tag-value pair and reads it back,
// checking the on-wire byte order.
func TestSegmentRoundTrip(t *testing.T) {
	buffer := stream.NewBuffer()
	w := bitstream.New(buffer)

	if err := PutSegment(w, Segment{Tag: 0x1A2B, Value: 0x00C8}); err != nil {
		t.Fatalf("PutSegment failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := []byte{0x1A, 0x2B, 0x00, 0xC8}
	got := buffer.Bytes()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("wire byte %d = 0x%02X, want 0x%02X", i, got[i], want[i])
		}
	}

	r := bitstream.New(stream.FromBytes(buffer.Bytes()))
	segment := GetSegment(r)
	if segment.Tag != 0x1A2B || segment.Value != 0x00C8 {
		t.Errorf("GetSegment() = {0x%04X, 0x%04X}, want {0x1A2B, 0x00C8}", uint16(segment.Tag), segment.Value)
	}
}

// TestOptionalTags tests the optional tag predicates and conversions.
func TestOptionalTags(t *testing.T) {
	if IsOptional(0x0014) {
		t.Error("0x0014 should be required")
	}
	optional := OptionalTag(vc5.Tag(0x0014))
	if !IsOptional(optional) {
		t.Error("negated tag should be optional")
	}
	if RequiredTag(optional) != 0x0014 {
		t.Errorf("RequiredTag = 0x%04X, want 0x0014", RequiredTag(optional))
	}
}

// TestChunkTagPredicates tests chunk detection on the required form of
// the tag.
func TestChunkTagPredicates(t *testing.T) {
	tests := []struct {
		name  string
		tag   int16
		chunk bool
		large bool
	}{
		{"Parameter tag", 0x0014, false, false},
		{"Optional parameter", -0x0014, false, false},
		{"Small metadata chunk", 0x4010, true, false},
		{"Optional small chunk", -0x4010, true, false},
		{"Optional tag with bit 14 set only in raw form", int16(-16), false, false},
		{"Large codeblock", 0x6000, true, true},
		{"Large metadata chunk", 0x6105, true, true},
		{"Optional large chunk", -0x6105, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsChunkTag(tt.tag); got != tt.chunk {
				t.Errorf("IsChunkTag(0x%04X) = %v, want %v", uint16(tt.tag), got, tt.chunk)
			}
			if got := IsLargeChunkTag(tt.tag); got != tt.large {
				t.Errorf("IsLargeChunkTag(0x%04X) = %v, want %v", uint16(tt.tag), got, tt.large)
			}
		})
	}
}

// TestOptionalChunkSkip tests that GetValue skips an optional chunk the
// decoder did not request and lands on the requested segment.
func TestOptionalChunkSkip(t *testing.T) {
	data := []byte{
		0xBF, 0xF0, 0x00, 0x02, // optional small chunk (-0x4010), two payload segments
		0xDE, 0xAD, 0xBE, 0xEF,
		0xCA, 0xFE, 0xF0, 0x0D,
		0x12, 0x34, 0x56, 0x78, // the requested segment
	}

	r := bitstream.New(stream.FromBytes(data))
	value, err := GetValue(r, vc5.Tag(0x1234))
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if value != 0x5678 {
		t.Errorf("GetValue = 0x%04X, want 0x5678", value)
	}
}

// TestChunkSkipPosition tests that skipping a chunk advances the byte
// position by four times the length plus the header.
func TestChunkSkipPosition(t *testing.T) {
	buffer := stream.NewBuffer()
	w := bitstream.New(buffer)

	if err := PutSegment(w, Segment{Tag: -0x4010, Value: 3}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := w.PutLong(0x11111111 * uint32(i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := PutSegment(w, Segment{Tag: 0x0014, Value: 640}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := bitstream.New(stream.FromBytes(buffer.Bytes()))
	before := r.Position()

	segment, err := GetTagValue(r)
	if err != nil {
		t.Fatalf("GetTagValue failed: %v", err)
	}
	if segment.Tag != 0x0014 || segment.Value != 640 {
		t.Errorf("segment = {0x%04X, %d}, want {0x0014, 640}", uint16(segment.Tag), segment.Value)
	}

	// The position consumed the chunk header, the payload, and the
	// requested segment
	if consumed := r.Position() - before; consumed != 4+12+4 {
		t.Errorf("consumed %d bytes, want 20", consumed)
	}
}

// TestGetValueBadTag tests the error on a tag mismatch.
func TestGetValueBadTag(t *testing.T) {
	buffer := stream.NewBuffer()
	w := bitstream.New(buffer)
	if err := PutTagValue(w, vc5.TagImageWidth, 640); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := bitstream.New(stream.FromBytes(buffer.Bytes()))
	if _, err := GetValue(r, vc5.TagImageHeight); err != codec.ErrBadTag {
		t.Errorf("GetValue error = %v, want ErrBadTag", err)
	}
}

// TestChunkBackPatch tests that EndChunk back-patches the placeholder
// length with the number of payload segments.
func TestChunkBackPatch(t *testing.T) {
	tests := []struct {
		name     string
		tag      int16
		segments int
		// header is the tag read back; the low byte of a large chunk
		// tag carries bits 16-23 of the payload length
		header int16
	}{
		{"Empty payload", -0x4010, 0, -0x4010},
		{"Three segments", -0x4010, 3, -0x4010},
		{"Large chunk", 0x6000, 5, 0x6000},
		{"Optional large chunk", -0x6000, 70000, -0x6001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := stream.NewBuffer()
			w := bitstream.New(buffer)

			// Leading segment so the chunk is not at offset zero
			if err := PutTagValue(w, vc5.TagImageWidth, 640); err != nil {
				t.Fatal(err)
			}

			if err := BeginChunk(w, tt.tag); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < tt.segments; i++ {
				if err := w.PutLong(uint32(i)); err != nil {
					t.Fatal(err)
				}
			}
			if err := EndChunk(w); err != nil {
				t.Fatal(err)
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}
			if w.SampleOffsetDepth() != 0 {
				t.Fatalf("sample offset stack not balanced")
			}

			r := bitstream.New(stream.FromBytes(buffer.Bytes()))
			GetSegment(r) // leading segment

			header := GetSegment(r)
			if header.Tag != tt.header {
				t.Errorf("chunk tag = 0x%04X, want 0x%04X", uint16(header.Tag), uint16(tt.header))
			}
			if size := ChunkSize(header); size != tt.segments {
				t.Errorf("chunk size = %d, want %d", size, tt.segments)
			}
		})
	}
}

// TestNestedChunks tests that nested chunks back-patch independently.
func TestNestedChunks(t *testing.T) {
	buffer := stream.NewBuffer()
	w := bitstream.New(buffer)

	if err := BeginChunk(w, -0x4010); err != nil {
		t.Fatal(err)
	}
	if err := BeginChunk(w, -0x4010); err != nil {
		t.Fatal(err)
	}
	if err := w.PutLong(0xAAAAAAAA); err != nil {
		t.Fatal(err)
	}
	if err := EndChunk(w); err != nil {
		t.Fatal(err)
	}
	if err := EndChunk(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := bitstream.New(stream.FromBytes(buffer.Bytes()))
	outer := GetSegment(r)
	if size := ChunkSize(outer); size != 2 {
		t.Errorf("outer chunk size = %d, want 2", size)
	}
	inner := GetSegment(r)
	if size := ChunkSize(inner); size != 1 {
		t.Errorf("inner chunk size = %d, want 1", size)
	}
}

// TestStateUpdate tests the dispatch from tags to codec state fields.
func TestStateUpdate(t *testing.T) {
	var state State
	state.Prepare()

	updates := []struct {
		tag   vc5.Tag
		value uint16
	}{
		{vc5.TagImageWidth, 1920},
		{vc5.TagImageHeight, 1080},
		{vc5.TagChannelCount, 3},
		{vc5.TagSubbandCount, 10},
		{vc5.TagBitsPerComponent, 12},
		{vc5.TagLowpassPrecision, 16},
		{vc5.TagChannelNumber, 2},
		{vc5.TagSubbandNumber, 7},
		{vc5.TagQuantization, 24},
		{vc5.TagPrescaleShift, 0x2800},
	}
	for _, update := range updates {
		if err := state.Update(Segment{Tag: int16(update.tag), Value: update.value}); err != nil {
			t.Fatalf("Update(%v) failed: %v", update.tag, err)
		}
	}

	if state.ImageWidth != 1920 || state.ImageHeight != 1080 {
		t.Errorf("image dimensions = %dx%d, want 1920x1080", state.ImageWidth, state.ImageHeight)
	}
	if state.ChannelCount != 3 || state.ChannelNumber != 2 {
		t.Errorf("channel state = %d/%d, want 3/2", state.ChannelCount, state.ChannelNumber)
	}
	if state.SubbandNumber != 7 || state.Quantization != 24 {
		t.Errorf("subband state = %d/%d, want 7/24", state.SubbandNumber, state.Quantization)
	}
	if state.PrescaleTable != ([vc5.MaxPrescaleCount]uint8{0, 2, 2}) {
		t.Errorf("prescale table = %v", state.PrescaleTable)
	}
}

// TestStateUpdateErrors tests out-of-range parameters and unknown tags.
func TestStateUpdateErrors(t *testing.T) {
	var state State
	state.Prepare()

	tests := []struct {
		name    string
		segment Segment
		err     error
	}{
		{"Channel out of range", Segment{Tag: int16(vc5.TagChannelNumber), Value: 4}, codec.ErrInvalidChannel},
		{"Subband out of range", Segment{Tag: int16(vc5.TagSubbandNumber), Value: 10}, codec.ErrInvalidSubband},
		{"Lowpass precision", Segment{Tag: int16(vc5.TagLowpassPrecision), Value: 4}, codec.ErrLowpassPrecision},
		{"Alternate codebook", Segment{Tag: int16(vc5.TagBandCoding), Value: 0x0002}, codec.ErrSyntax},
		{"Difference coding", Segment{Tag: int16(vc5.TagBandCoding), Value: 0x0011}, codec.ErrSyntax},
		{"Unknown required tag", Segment{Tag: 0x0777, Value: 1}, codec.ErrInvalidTag},
		{"Unknown optional tag", Segment{Tag: -0x0777, Value: 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := state.Update(tt.segment); err != tt.err {
				t.Errorf("Update error = %v, want %v", err, tt.err)
			}
		})
	}
}

// TestFrameStructureFlags tests decoding of the frame structure flags.
func TestFrameStructureFlags(t *testing.T) {
	var state State
	state.Prepare()

	value := uint16(vc5.ImageStructureInterlaced | vc5.ImageStructureBottomRowFirst)
	if err := state.Update(Segment{Tag: int16(vc5.TagFrameStructure), Value: value}); err != nil {
		t.Fatal(err)
	}

	if state.Progressive {
		t.Error("interlaced flag should clear progressive")
	}
	if !state.TopFieldFirst {
		t.Error("top field first should remain set")
	}
	if !state.FrameInverted {
		t.Error("bottom row first should set frame inverted")
	}
}
