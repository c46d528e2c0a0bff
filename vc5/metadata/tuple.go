// Package metadata implements the hierarchical tagged-payload metadata
// framework (SMPTE ST 2073-7): self-describing tuples parsed from XML,
// serialized into chunked binary, and round-tripped back to XML.
package metadata

import (
	"github.com/cocosip/go-vc5-codec/codec"
)

// FourCC is a four character code identifying a metadata tuple.
type FourCC [4]byte

// Tag converts a string to a four character code.
func Tag(s string) FourCC {
	var tag FourCC
	copy(tag[:], s)
	return tag
}

func (f FourCC) String() string {
	return string(f[:])
}

// Chunk tags that envelope a tree of tuples.
const (
	// ChunkSmall is the small metadata chunk tag with a 16-bit length.
	ChunkSmall = 0x4010

	// ChunkLarge is the one-byte prefix of a large metadata chunk with a
	// 24-bit length.
	ChunkLarge = 0x61
)

// Maximum depth of the tuple tree.
const maxNestingDepth = 12

// Tuple is a metadata record: an eight-byte header followed by a payload
// of max(count, 1) * size bytes, padded to a four-byte boundary. Tuples
// with a nested type contain further tuples in place of a payload.
type Tuple struct {
	Tag   FourCC
	Type  byte
	Size  uint32
	Count uint16

	// Payload holds the value in wire order (integers big-endian).
	Payload []byte

	// Children are the nested tuples of a class instance or a nested
	// payload tuple.
	Children []*Tuple
}

// HasRepeatCount reports whether the tuple data type has a repeat count,
// in which case the header carries a one-byte element size and a two-byte
// count instead of a three-byte total size.
func HasRepeatCount(tupleType byte) bool {
	switch tupleType {
	case 'b', 'B', 'f', 'd', 'F', 'G', 'l', 'L', 'j', 'J', 'q', 'Q', 'r', 'R', 's', 'S', 'U':
		return true
	default:
		return false
	}
}

// IsNestedType reports whether the tuple value comprises other tuples.
func IsNestedType(tupleType byte) bool {
	return tupleType == 0 || tupleType == 'P'
}

// IsClassInstance reports whether the tuple is a metadata class instance.
func IsClassInstance(tupleType byte) bool {
	return tupleType == 'E'
}

// IsNumericalType reports whether the tuple data type is numerical.
func IsNumericalType(tupleType byte) bool {
	switch tupleType {
	case 'b', 'B', 's', 'S', 'l', 'L', 'j', 'J', 'f', 'd':
		return true
	default:
		return false
	}
}

// ElementSize returns the size in bytes of one scalar element of the
// specified type, or zero when the type has no fixed element size.
func ElementSize(tupleType byte) uint32 {
	switch tupleType {
	case 'b', 'B':
		return 1
	case 's', 'S':
		return 2
	case 'l', 'L', 'f', 'q', 'F':
		return 4
	case 'j', 'J', 'd', 'Q', 'r':
		return 8
	case 'G', 'U', 'R':
		return 16
	default:
		return 0
	}
}

// PrintableType converts data type zero to a printable character.
func PrintableType(tupleType byte) byte {
	if tupleType == 0 {
		return '0'
	}
	return tupleType
}

// ParseType converts the printable representation back to the data type.
func ParseType(printable string) (byte, error) {
	if len(printable) != 1 {
		return 0, codec.ErrSyntax
	}
	if printable[0] == '0' {
		return 0, nil
	}
	return printable[0], nil
}

// PayloadSize returns the size of the tuple payload before padding.
func (t *Tuple) PayloadSize() uint32 {
	count := uint32(t.Count)
	if count == 0 {
		count = 1
	}
	return t.Size * count
}

// Padding returns the number of zero bytes that follow the payload to
// round it up to a segment boundary.
func (t *Tuple) Padding() uint32 {
	size := t.PayloadSize()
	return (4 - size%4) % 4
}

// NestedSize returns the total wire size of the children of a nested
// tuple, including their headers and padding.
func (t *Tuple) NestedSize() uint32 {
	var total uint32
	for _, child := range t.Children {
		total += child.WireSize()
	}
	return total
}

// WireSize returns the total size of the tuple on the wire: the header,
// the payload or nested tuples, and the padding.
func (t *Tuple) WireSize() uint32 {
	const headerSize = 8

	if len(t.Children) > 0 {
		return headerSize + t.NestedSize()
	}

	size := t.PayloadSize()
	return headerSize + size + (4-size%4)%4
}
