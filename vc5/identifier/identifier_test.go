package identifier

import (
	"testing"

	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
	"github.com/cocosip/go-vc5-codec/vc5/syntax"
)

// TestIdentifierRoundTrip writes the unique image identifier chunk and
// parses it back.
func TestIdentifierRoundTrip(t *testing.T) {
	original := Testing()
	original.InstanceNumber = 7

	buffer := stream.NewBuffer()
	w := bitstream.New(buffer)
	if err := original.Write(w); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := bitstream.New(stream.FromBytes(buffer.Bytes()))
	header := syntax.GetSegment(r)

	if syntax.RequiredTag(header.Tag) != int16(vc5.TagUniqueImageIdentifier) {
		t.Fatalf("chunk tag = 0x%04X", uint16(header.Tag))
	}
	if !syntax.IsOptional(header.Tag) {
		t.Error("identifier chunk should be optional")
	}
	if !syntax.IsChunkTag(header.Tag) {
		t.Error("identifier tag should be a chunk tag")
	}

	parsed, err := Parse(r, syntax.ChunkSize(header))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsed.ImageSequenceID != original.ImageSequenceID {
		t.Errorf("sequence id = %v, want %v", parsed.ImageSequenceID, original.ImageSequenceID)
	}
	if parsed.ImageSequenceNumber != original.ImageSequenceNumber {
		t.Errorf("sequence number = %d, want %d", parsed.ImageSequenceNumber, original.ImageSequenceNumber)
	}
	if parsed.InstanceNumber != original.InstanceNumber {
		t.Errorf("instance number = %d, want %d", parsed.InstanceNumber, original.InstanceNumber)
	}
}

// TestIdentifierUniqueness tests that new identifiers differ.
func TestIdentifierUniqueness(t *testing.T) {
	a := New()
	b := New()
	if a.ImageSequenceID == b.ImageSequenceID {
		t.Error("new identifiers should have distinct sequence ids")
	}
}

// TestIdentifierBadLabel tests that a corrupted label is rejected.
func TestIdentifierBadLabel(t *testing.T) {
	original := Testing()

	buffer := stream.NewBuffer()
	w := bitstream.New(buffer)
	if err := original.Write(w); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	data := buffer.Bytes()
	data[4] ^= 0xFF // corrupt the first label byte

	r := bitstream.New(stream.FromBytes(data))
	header := syntax.GetSegment(r)
	if _, err := Parse(r, syntax.ChunkSize(header)); err == nil {
		t.Error("corrupted label should fail to parse")
	}
}
