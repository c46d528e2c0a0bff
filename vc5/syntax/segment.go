// Package syntax implements the tag-value pair protocol of the VC-5
// bitstream: segments, the optional-element skipping rule, chunk framing
// with back-patched sizes, and the codec state that is updated as the
// decoder consumes segments.
package syntax

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
)

// Segment is one 32-bit wire element: a 16-bit signed tag concatenated
// with a 16-bit value.
type Segment struct {
	Tag   int16
	Value uint16
}

// IsOptional reports whether the tag denotes an optional element that a
// decoder may skip without understanding it.
func IsOptional(tag int16) bool {
	return tag < 0
}

// RequiredTag converts an optional tag to its required form.
func RequiredTag(tag int16) int16 {
	if tag < 0 {
		return -tag
	}
	return tag
}

// OptionalTag converts a required tag to its optional form.
func OptionalTag(tag vc5.Tag) int16 {
	return -int16(tag)
}

// IsChunkTag reports whether the tag marks a chunk header whose value is
// the length of the following payload in segments. The chunk bit is
// tested on the required form of the tag, so an optional chunk is
// recognized after negation.
func IsChunkTag(tag int16) bool {
	return uint16(RequiredTag(tag))&vc5.ChunkTagMask != 0
}

// IsLargeChunkTag reports whether the required form of the tag carries a
// one-byte large chunk prefix. The low byte of the tag holds the upper
// eight bits of the 24-bit payload length.
func IsLargeChunkTag(tag int16) bool {
	prefix := RequiredTag(tag) >> 8
	return 0x60 <= prefix && prefix <= 0x6F
}

// ChunkSize returns the payload length in segments encoded by a chunk
// header segment.
func ChunkSize(segment Segment) int {
	if IsLargeChunkTag(segment.Tag) {
		return int(RequiredTag(segment.Tag)&0xFF)<<16 | int(segment.Value)
	}
	return int(segment.Value)
}

// GetSegment reads the next tag-value pair from the bitstream.
func GetSegment(stream *bitstream.BitStream) Segment {
	tag := int16(stream.GetBits(16))
	value := uint16(stream.GetBits(16))
	return Segment{Tag: tag, Value: value}
}

// PutSegment writes a tag-value pair to the bitstream.
func PutSegment(stream *bitstream.BitStream, segment Segment) error {
	return stream.PutLong(uint32(uint16(segment.Tag))<<16 | uint32(segment.Value))
}

// PutTagValue writes a required tag-value pair to the bitstream.
func PutTagValue(stream *bitstream.BitStream, tag vc5.Tag, value uint16) error {
	return PutSegment(stream, Segment{Tag: int16(tag), Value: value})
}

// PutTagValueOptional writes an optional tag-value pair to the bitstream.
func PutTagValueOptional(stream *bitstream.BitStream, tag vc5.Tag, value uint16) error {
	return PutSegment(stream, Segment{Tag: OptionalTag(tag), Value: value})
}

// GetTagValue reads segments from the bitstream until it finds the next
// required segment. Optional segments that the caller did not request are
// skipped: an optional chunk is skipped over its entire payload, while an
// optional parameter segment is simply ignored.
func GetTagValue(stream *bitstream.BitStream) (Segment, error) {
	for {
		segment := GetSegment(stream)
		if err := stream.Err(); err != nil {
			return Segment{}, err
		}
		if !IsOptional(segment.Tag) {
			return segment, nil
		}
		if IsChunkTag(segment.Tag) {
			if err := stream.SkipPayload(ChunkSize(segment)); err != nil {
				return Segment{}, err
			}
		}
	}
}

// GetValue reads the next required segment and checks that its tag matches
// the expected tag. On a mismatch the bitstream error is recorded and zero
// is returned.
func GetValue(stream *bitstream.BitStream, tag vc5.Tag) (uint16, error) {
	segment, err := GetTagValue(stream)
	if err != nil {
		return 0, err
	}
	if segment.Tag != int16(tag) {
		return 0, codec.ErrBadTag
	}
	return segment.Value, nil
}
