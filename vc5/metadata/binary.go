package metadata

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
	"github.com/cocosip/go-vc5-codec/vc5/syntax"
)

// WriteChunk writes a tree of tuples to the bitstream enveloped in a
// metadata chunk. The chunk header is written with a placeholder length
// and back-patched after the payload. A large chunk element is used when
// requested, otherwise the small chunk tag.
func WriteChunk(stream *bitstream.BitStream, tuples []*Tuple, large bool) error {
	chunkTag := int16(ChunkSmall)
	if large {
		chunkTag = int16(ChunkLarge << 8)
	}

	// The metadata chunk is an optional bitstream element
	if err := syntax.BeginChunk(stream, -chunkTag); err != nil {
		return err
	}

	for _, tuple := range tuples {
		if err := writeTuple(stream, tuple, 0); err != nil {
			return err
		}
	}

	return syntax.EndChunk(stream)
}

// writeTuple writes one tuple header, its payload or children, and the
// padding to the next segment boundary.
func writeTuple(stream *bitstream.BitStream, tuple *Tuple, depth int) error {
	if depth >= maxNestingDepth {
		return codec.ErrSyntax
	}

	if err := writeTupleHeader(stream, tuple); err != nil {
		return err
	}

	if len(tuple.Children) > 0 {
		for _, child := range tuple.Children {
			if err := writeTuple(stream, child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := stream.PutByteArray(tuple.Payload); err != nil {
		return err
	}

	for i := uint32(0); i < tuple.Padding(); i++ {
		if err := stream.PutBits(0, 8); err != nil {
			return err
		}
	}

	return nil
}

// writeTupleHeader writes the eight-byte tuple header: the four character
// tag, the one-byte type, then either a one-byte element size and a
// two-byte count for types with a repeat count, or a three-byte total
// size.
func writeTupleHeader(stream *bitstream.BitStream, tuple *Tuple) error {
	if err := stream.PutByteArray(tuple.Tag[:]); err != nil {
		return err
	}
	if err := stream.PutBits(uint32(tuple.Type), 8); err != nil {
		return err
	}

	if HasRepeatCount(tuple.Type) {
		if err := stream.PutBits(tuple.Size, 8); err != nil {
			return err
		}
		return stream.PutBits(uint32(tuple.Count), 16)
	}

	size := tuple.Size
	if len(tuple.Children) > 0 {
		size = tuple.NestedSize()
	}
	return stream.PutBits(size, 24)
}

// ReadChunk reads the payload of a metadata chunk into a tree of tuples.
// The chunk header has already been consumed; the size is in segments.
func ReadChunk(stream *bitstream.BitStream, chunkSize int) ([]*Tuple, error) {
	return readTuples(stream, uint32(chunkSize)*4, 0)
}

// readTuples reads tuples until the declared payload size is consumed.
func readTuples(stream *bitstream.BitStream, payloadSize uint32, depth int) ([]*Tuple, error) {
	if depth >= maxNestingDepth {
		return nil, codec.ErrSyntax
	}

	var tuples []*Tuple

	for payloadSize >= 8 {
		tuple, wireSize, err := readTuple(stream, depth)
		if err != nil {
			return nil, err
		}
		if wireSize > payloadSize {
			return nil, codec.ErrSyntax
		}
		tuples = append(tuples, tuple)
		payloadSize -= wireSize
	}

	if payloadSize != 0 {
		return nil, codec.ErrSyntax
	}

	return tuples, nil
}

// readTuple reads one tuple and, for nested types, its children.
func readTuple(stream *bitstream.BitStream, depth int) (*Tuple, uint32, error) {
	tuple := &Tuple{}

	stream.GetByteArray(tuple.Tag[:])
	tuple.Type = byte(stream.GetBits(8))

	if HasRepeatCount(tuple.Type) {
		tuple.Size = stream.GetBits(8)
		tuple.Count = uint16(stream.GetBits(16))
	} else {
		tuple.Size = stream.GetBits(24)
	}
	if err := stream.Err(); err != nil {
		return nil, 0, err
	}

	if IsNestedType(tuple.Type) || IsClassInstance(tuple.Type) {
		children, err := readTuples(stream, tuple.Size, depth+1)
		if err != nil {
			return nil, 0, err
		}
		tuple.Children = children
		return tuple, 8 + tuple.Size, nil
	}

	size := tuple.PayloadSize()
	tuple.Payload = make([]byte, size)
	stream.GetByteArray(tuple.Payload)

	padding := tuple.Padding()
	for i := uint32(0); i < padding; i++ {
		stream.GetBits(8)
	}
	if err := stream.Err(); err != nil {
		return nil, 0, err
	}

	return tuple, 8 + size + padding, nil
}
