package stream

import "github.com/cocosip/go-vc5-codec/codec"

// BufferStream is a stream backed by a contiguous region of memory.
// A writing stream grows its buffer as needed; a reading stream is bound
// to the data passed at creation.
type BufferStream struct {
	buffer []byte
	cursor int
	err    error
}

// NewBuffer creates an empty buffer stream for writing.
func NewBuffer() *BufferStream {
	return &BufferStream{}
}

// FromBytes creates a buffer stream that reads the supplied data.
func FromBytes(data []byte) *BufferStream {
	return &BufferStream{buffer: data}
}

// Bytes returns the bytes written to the stream.
func (s *BufferStream) Bytes() []byte {
	return s.buffer[:len(s.buffer)]
}

// GetWord reads the next 32-bit word from the buffer.
func (s *BufferStream) GetWord() uint32 {
	if s.cursor+wordSize > len(s.buffer) {
		s.err = codec.ErrEndOfStream
		return 0
	}
	b := s.buffer[s.cursor:]
	s.cursor += wordSize
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// GetByte reads the next byte from the buffer.
func (s *BufferStream) GetByte() byte {
	if s.cursor >= len(s.buffer) {
		s.err = codec.ErrEndOfStream
		return 0
	}
	b := s.buffer[s.cursor]
	s.cursor++
	return b
}

// PutWord appends a 32-bit word to the buffer.
func (s *BufferStream) PutWord(word uint32) error {
	s.buffer = append(s.buffer, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	s.cursor += wordSize
	return nil
}

// PutByte appends a single byte to the buffer.
func (s *BufferStream) PutByte(b byte) error {
	s.buffer = append(s.buffer, b)
	s.cursor++
	return nil
}

// GetBlock reads a block of data at the specified offset.
func (s *BufferStream) GetBlock(buffer []byte, offset int64) error {
	if int(offset)+len(buffer) > len(s.buffer) {
		return codec.ErrFileRead
	}
	copy(buffer, s.buffer[offset:])
	return nil
}

// PutBlock writes a block of data at the specified offset.
func (s *BufferStream) PutBlock(buffer []byte, offset int64) error {
	if int(offset)+len(buffer) > len(s.buffer) {
		return codec.ErrFileWrite
	}
	copy(s.buffer[offset:], buffer)
	return nil
}

// Rewind resets the cursor to the start of the buffer.
func (s *BufferStream) Rewind() error {
	s.cursor = 0
	s.err = nil
	return nil
}

// Skip advances the read cursor without retaining the data.
func (s *BufferStream) Skip(size int) error {
	for ; size > 0; size-- {
		s.GetByte()
	}
	return s.err
}

// Pad appends the specified number of zero bytes.
func (s *BufferStream) Pad(size int) error {
	for ; size > 0; size-- {
		if err := s.PutByte(0); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op for buffer streams.
func (s *BufferStream) Flush() error {
	return nil
}

// ByteCount returns the number of bytes read or written.
func (s *BufferStream) ByteCount() int64 {
	return int64(s.cursor)
}

// EndOfStream reports whether the cursor has reached the end of the buffer.
func (s *BufferStream) EndOfStream() bool {
	return s.cursor >= len(s.buffer)
}

// Err returns the sticky error recorded by a failed operation.
func (s *BufferStream) Err() error {
	return s.err
}
