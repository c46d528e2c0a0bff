package syntax

import (
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
)

// BeginChunk writes a chunk header with a placeholder length of zero and
// pushes the byte position of the header onto the sample-offset stack.
// The payload written after this call may itself contain chunks.
func BeginChunk(stream *bitstream.BitStream, tag int16) error {
	if err := stream.PushSampleOffset(tag); err != nil {
		return err
	}
	return PutSegment(stream, Segment{Tag: tag, Value: 0})
}

// EndChunk pops the sample-offset stack and back-patches the chunk header
// with the number of payload segments written since the matching call to
// BeginChunk. The bitstream must be on a segment boundary.
func EndChunk(stream *bitstream.BitStream) error {
	if err := stream.PadSegment(); err != nil {
		return err
	}

	tag, position, err := stream.PopSampleOffset()
	if err != nil {
		return err
	}

	count := (stream.Position() - position - 4) / 4

	headerTag := uint16(RequiredTag(tag))
	if IsLargeChunkTag(tag) {
		// The low byte of a large chunk tag holds the upper eight bits
		// of the 24-bit payload length.
		headerTag = headerTag&0xFF00 | uint16(count>>16)&0xFF
	}
	if tag < 0 {
		headerTag = uint16(-int16(headerTag))
	}

	header := uint32(headerTag)<<16 | uint32(uint16(count))
	return stream.PatchWord(position, header)
}

// PutChunk writes a complete chunk: the header with the final length and
// the payload segments. It is used when the payload is already known.
func PutChunk(stream *bitstream.BitStream, tag vc5.Tag, payload []uint32) error {
	if err := PutTagValueOptional(stream, tag, uint16(len(payload))); err != nil {
		return err
	}
	for _, segment := range payload {
		if err := stream.PutLong(segment); err != nil {
			return err
		}
	}
	return nil
}
