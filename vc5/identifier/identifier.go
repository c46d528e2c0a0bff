// Package identifier implements the optional unique image identifier
// chunk. The identifier is a basic UMID (SMPTE ST 330) carrying a
// universally unique identifier as the material number, followed by the
// image sequence number.
package identifier

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
	"github.com/cocosip/go-vc5-codec/vc5/syntax"
)

// umidLabel is the SMPTE universal label for a basic UMID.
var umidLabel = [12]byte{0x06, 0x0A, 0x2B, 0x34, 0x01, 0x01, 0x01, 0x05, 0x01, 0x01, 0x01, 0x20}

// umidLengthByte is the length byte that follows the UMID label.
const umidLengthByte = 0x13

// Payload lengths in segments.
const (
	umidLength           = 8
	sequenceNumberLength = 1
)

// Identifier is the unique image identifier for one encoded image.
type Identifier struct {
	// ImageSequenceID identifies the sequence the image belongs to.
	ImageSequenceID uuid.UUID

	// ImageSequenceNumber is the position of the image in the sequence.
	ImageSequenceNumber uint32

	// InstanceNumber distinguishes copies of the same material.
	InstanceNumber uint32
}

// New creates an identifier for a new image sequence.
func New() Identifier {
	return Identifier{ImageSequenceID: uuid.New()}
}

// Testing returns the identifier with known values used by the
// conformance test cases.
func Testing() Identifier {
	var id Identifier
	for i := range id.ImageSequenceID {
		id.ImageSequenceID[i] = byte(0x10 + i)
	}
	id.ImageSequenceNumber = 0x0A0B0C0D
	return id
}

// Write writes the unique image identifier chunk to the bitstream.
func (id Identifier) Write(stream *bitstream.BitStream) error {
	payloadLength := umidLength + sequenceNumberLength

	if err := syntax.PutTagValueOptional(stream, vc5.TagUniqueImageIdentifier, uint16(payloadLength)); err != nil {
		return err
	}

	if err := stream.PutByteArray(umidLabel[:]); err != nil {
		return err
	}
	if err := stream.PutBits(umidLengthByte, 8); err != nil {
		return err
	}
	if err := stream.PutBits(id.InstanceNumber, 24); err != nil {
		return err
	}
	if err := stream.PutByteArray(id.ImageSequenceID[:]); err != nil {
		return err
	}
	return stream.PutLong(id.ImageSequenceNumber)
}

// Parse reads the payload of a unique image identifier chunk. The chunk
// header has already been consumed.
func Parse(stream *bitstream.BitStream, chunkSize int) (Identifier, error) {
	var id Identifier

	if chunkSize != umidLength+sequenceNumberLength {
		return id, codec.ErrSyntax
	}

	var label [12]byte
	stream.GetByteArray(label[:])
	if !bytes.Equal(label[:], umidLabel[:]) {
		return id, codec.ErrSyntax
	}

	if stream.GetBits(8) != umidLengthByte {
		return id, codec.ErrSyntax
	}
	id.InstanceNumber = stream.GetBits(24)

	stream.GetByteArray(id.ImageSequenceID[:])
	id.ImageSequenceNumber = stream.GetLong()

	return id, stream.Err()
}
