// Package bitstream implements bit-level reading and writing on top of a
// byte stream. The bitstream holds a 32-bit buffer and a count of the bits
// that are currently valid in the buffer. Words are byte swapped as they
// move between the buffer and the byte stream so that the wire order is
// big-endian network order.
//
// The bitstream also maintains the sample-offset stack used to back-patch
// the length field of a chunk header after its payload has been written.
package bitstream

import (
	"math/bits"

	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
)

// BitWordCount is the number of bits in the internal buffer.
const BitWordCount = 32

// MaxSampleOffsetCount is the depth of the sample-offset stack.
const MaxSampleOffsetCount = 8

// BitStream is a bit-level view of a byte stream.
//
// The internal buffer is always normalized: unused bit positions are zero,
// and after a read the consumed bits have been shifted out on the most
// significant end.
type BitStream struct {
	err    error
	stream stream.Stream
	buffer uint32
	count  uint

	sampleOffsetStack [MaxSampleOffsetCount]sampleOffset
	sampleOffsetCount int
}

type sampleOffset struct {
	tag      int16
	position int64
}

// New creates a bitstream attached to the specified byte stream.
// The bitstream holds a non-owning reference: closing the byte stream,
// if and when appropriate, is the responsibility of the caller.
func New(s stream.Stream) *BitStream {
	return &BitStream{stream: s}
}

// Mask returns a word with the specified number of right-justified one bits.
func Mask(n uint) uint32 {
	if n >= BitWordCount {
		return ^uint32(0)
	}
	return (1 << n) - 1
}

// Err returns the sticky error recorded while processing the bitstream.
func (b *BitStream) Err() error {
	return b.err
}

// setError records the first error; later reads return zero without I/O.
func (b *BitStream) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// GetBits returns the specified number of bits from the bitstream,
// right justified in the result.
func (b *BitStream) GetBits(count uint) uint32 {
	if count == 0 || count > BitWordCount || b.err != nil {
		return 0
	}

	if count <= b.count {
		result := b.buffer >> (BitWordCount - count)
		b.buffer <<= count
		b.count -= count
		return result
	}

	// Use the bits remaining in the buffer, then refill from the stream
	result := b.buffer >> (BitWordCount - count)
	lowBitCount := count - b.count
	b.count = 0

	if err := b.fill(); err != nil {
		return 0
	}

	result |= b.buffer >> (BitWordCount - lowBitCount)
	if lowBitCount < BitWordCount {
		b.buffer <<= lowBitCount
	} else {
		b.buffer = 0
	}
	b.count -= lowBitCount

	return result & Mask(count)
}

// fill replenishes the empty buffer with one word from the byte stream.
func (b *BitStream) fill() error {
	if b.stream == nil {
		b.setError(codec.ErrUnderflow)
		return b.err
	}
	word := b.stream.GetWord()
	if err := b.stream.Err(); err != nil {
		b.setError(codec.ErrUnderflow)
		return b.err
	}
	b.buffer = bits.ReverseBytes32(word)
	b.count = BitWordCount
	return nil
}

// PutBits writes the low bits of the argument to the bitstream.
func (b *BitStream) PutBits(value uint32, count uint) error {
	if count == 0 || b.err != nil {
		return b.err
	}
	value &= Mask(count)

	unused := BitWordCount - b.count
	if count <= unused {
		b.buffer |= value << (unused - count)
		b.count += count
		if b.count == BitWordCount {
			return b.flushWord()
		}
		return nil
	}

	// Fill the buffer with the high bits and write it out
	lowBitCount := count - unused
	b.buffer |= value >> lowBitCount
	b.count = BitWordCount
	if err := b.flushWord(); err != nil {
		return err
	}

	b.buffer = (value & Mask(lowBitCount)) << (BitWordCount - lowBitCount)
	b.count = lowBitCount
	return nil
}

// flushWord writes the full buffer to the byte stream in network order.
func (b *BitStream) flushWord() error {
	if err := b.stream.PutWord(bits.ReverseBytes32(b.buffer)); err != nil {
		b.setError(codec.ErrOverflow)
		return b.err
	}
	b.buffer = 0
	b.count = 0
	return nil
}

// GetLong reads one 32-bit word from the bitstream.
func (b *BitStream) GetLong() uint32 {
	return b.GetBits(BitWordCount)
}

// PutLong writes one 32-bit word to the bitstream.
func (b *BitStream) PutLong(word uint32) error {
	return b.PutBits(word, BitWordCount)
}

// AddBits reads more bits and appends them to the right end of the word
// supplied as an argument. This is used to accumulate bits that may match
// a codeword.
func (b *BitStream) AddBits(value uint32, count uint) uint32 {
	return value<<count | b.GetBits(count)
}

// GetByteArray reads a block of bytes from the bitstream.
func (b *BitStream) GetByteArray(array []byte) {
	for i := range array {
		array[i] = byte(b.GetBits(8))
	}
}

// PutByteArray writes a block of bytes to the bitstream.
func (b *BitStream) PutByteArray(array []byte) error {
	for _, value := range array {
		if err := b.PutBits(uint32(value), 8); err != nil {
			return err
		}
	}
	return nil
}

// AlignByte aligns the bitstream to the next byte boundary. Reading
// discards the fractional bits; writing pads them with zero.
func (b *BitStream) AlignByte() {
	remainder := b.count % 8
	if remainder == 0 {
		return
	}
	b.GetBits(remainder)
}

// PadByte pads the written bitstream to the next byte boundary with zeros.
func (b *BitStream) PadByte() error {
	remainder := b.count % 8
	if remainder == 0 {
		return nil
	}
	return b.PutBits(0, 8-remainder)
}

// AlignWord flushes the entire read buffer unless it is empty or full.
func (b *BitStream) AlignWord() {
	if 0 < b.count && b.count < BitWordCount {
		b.GetBits(b.count)
	}
}

// PadWord pads the written bitstream to the next word boundary with zeros.
// The partially filled buffer, if any, is emitted.
func (b *BitStream) PadWord() error {
	if 0 < b.count && b.count < BitWordCount {
		return b.PutBits(0, BitWordCount-b.count)
	}
	return nil
}

// AlignSegment consumes bits until the cumulative stream position is a
// multiple of the segment size (four bytes).
func (b *BitStream) AlignSegment() {
	b.AlignByte()

	byteCount := b.stream.ByteCount() - int64(b.count/8)
	for byteCount%4 != 0 && b.err == nil {
		b.GetBits(8)
		byteCount++
	}
}

// PadSegment pads the written bitstream with zeros until the cumulative
// stream position is a multiple of the segment size (four bytes).
func (b *BitStream) PadSegment() error {
	if err := b.PadByte(); err != nil {
		return err
	}
	byteCount := int64(b.count/8) + b.stream.ByteCount()
	for byteCount%4 != 0 {
		if err := b.PutBits(0, 8); err != nil {
			return err
		}
		byteCount++
	}
	return nil
}

// IsAlignedSegment reports whether the bitstream is positioned on a
// segment boundary.
func (b *BitStream) IsAlignedSegment() bool {
	return b.count == 0 || b.count == BitWordCount
}

// Flush pads and writes any partial buffer to the byte stream.
func (b *BitStream) Flush() error {
	if err := b.PadWord(); err != nil {
		return err
	}
	return b.stream.Flush()
}

// Position returns the current byte position in the stream. The bit buffer
// must be empty, which is the case on any segment boundary.
func (b *BitStream) Position() int64 {
	return b.stream.ByteCount()
}

// SkipPayload skips the payload of a chunk. The chunk size is in segments.
func (b *BitStream) SkipPayload(chunkSize int) error {
	size := 4 * chunkSize
	if b.count != 0 {
		// Consume buffered bytes first
		buffered := int(b.count / 8)
		if buffered > size {
			buffered = size
		}
		b.GetBits(uint(8 * buffered))
		size -= buffered
	}
	if err := b.stream.Skip(size); err != nil {
		b.setError(codec.ErrUnderflow)
		return b.err
	}
	return nil
}

// PushSampleOffset records the current byte position on the sample-offset
// stack together with the tag of the chunk whose length will be patched.
// Pushing onto a full stack is a programming error and is reported as a
// syntax error.
func (b *BitStream) PushSampleOffset(tag int16) error {
	if b.sampleOffsetCount >= MaxSampleOffsetCount {
		return codec.ErrSyntax
	}
	b.sampleOffsetStack[b.sampleOffsetCount] = sampleOffset{tag: tag, position: b.Position()}
	b.sampleOffsetCount++
	return nil
}

// PopSampleOffset removes the most recent entry from the sample-offset
// stack and returns the recorded tag and byte position.
func (b *BitStream) PopSampleOffset() (tag int16, position int64, err error) {
	if b.sampleOffsetCount == 0 {
		return 0, 0, codec.ErrSyntax
	}
	b.sampleOffsetCount--
	entry := b.sampleOffsetStack[b.sampleOffsetCount]
	return entry.tag, entry.position, nil
}

// SampleOffsetDepth returns the number of entries on the sample-offset
// stack. The stack must be balanced before the bitstream is closed.
func (b *BitStream) SampleOffsetDepth() int {
	return b.sampleOffsetCount
}

// PatchWord rewrites the 32-bit word at the specified byte offset in the
// backing stream. The word is written in network order.
func (b *BitStream) PatchWord(offset int64, word uint32) error {
	buffer := []byte{byte(word >> 24), byte(word >> 16), byte(word >> 8), byte(word)}
	if err := b.stream.PutBlock(buffer, offset); err != nil {
		b.setError(codec.ErrOverflow)
		return b.err
	}
	return nil
}

// EndOfStream reports whether all bits have been consumed.
func (b *BitStream) EndOfStream() bool {
	if b.count > 0 {
		return false
	}
	return b.stream.EndOfStream()
}
