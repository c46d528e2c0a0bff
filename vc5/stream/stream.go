// Package stream implements the byte stream abstraction used by the
// bitstream. A stream can be bound to a binary file opened for reading or
// writing, or to a buffer in memory. The stream hides the details of how
// bytes are read or written on demand by the bitstream and tracks the
// cumulative number of bytes transferred.
package stream

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/cocosip/go-vc5-codec/codec"
)

// A word is the unit transferred between the bitstream and the byte stream.
const wordSize = 4

// Stream is a sink or source of bytes with positional block access.
//
// Short reads set a sticky error that subsequent operations observe: a read
// after the end of the stream returns zero without further I/O.
type Stream interface {
	// GetWord reads the next 32-bit word in the byte order of the stream.
	GetWord() uint32

	// GetByte reads the next byte.
	GetByte() byte

	// PutWord writes a 32-bit word.
	PutWord(word uint32) error

	// PutByte writes a single byte.
	PutByte(b byte) error

	// GetBlock reads a block at the specified offset, preserving the
	// current position.
	GetBlock(buffer []byte, offset int64) error

	// PutBlock writes a block at the specified offset, preserving the
	// current position.
	PutBlock(buffer []byte, offset int64) error

	// Rewind seeks to the start of the stream and resets the byte count.
	Rewind() error

	// Skip advances the read cursor without retaining the data.
	Skip(size int) error

	// Pad writes the specified number of zero bytes.
	Pad(size int) error

	// Flush writes buffered output to the backing store.
	Flush() error

	// ByteCount returns the cumulative number of bytes read or written.
	ByteCount() int64

	// EndOfStream reports whether the read cursor is at the end.
	EndOfStream() bool

	// Err returns the sticky error recorded by a failed operation.
	Err() error
}

// FileStream is a stream backed by a random-access file.
type FileStream struct {
	file      *os.File
	byteCount int64
	err       error
}

// Open opens a file stream for reading.
func Open(pathname string) (*FileStream, error) {
	file, err := os.Open(pathname)
	if err != nil {
		return nil, errors.Wrap(codec.ErrFileOpen, pathname)
	}
	return &FileStream{file: file}, nil
}

// Create opens a file stream for writing, truncating any existing file.
func Create(pathname string) (*FileStream, error) {
	file, err := os.Create(pathname)
	if err != nil {
		return nil, errors.Wrap(codec.ErrFileCreate, pathname)
	}
	return &FileStream{file: file}, nil
}

// Close closes the underlying file.
func (s *FileStream) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// GetWord reads the next 32-bit word from the file.
func (s *FileStream) GetWord() uint32 {
	var buffer [wordSize]byte
	n, err := io.ReadFull(s.file, buffer[:])
	if err != nil {
		s.err = codec.ErrEndOfStream
		return 0
	}
	s.byteCount += int64(n)
	return uint32(buffer[0]) | uint32(buffer[1])<<8 | uint32(buffer[2])<<16 | uint32(buffer[3])<<24
}

// GetByte reads the next byte from the file.
func (s *FileStream) GetByte() byte {
	var buffer [1]byte
	if _, err := io.ReadFull(s.file, buffer[:]); err != nil {
		s.err = codec.ErrEndOfStream
		return 0
	}
	s.byteCount++
	return buffer[0]
}

// PutWord writes a 32-bit word to the file.
func (s *FileStream) PutWord(word uint32) error {
	buffer := [wordSize]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
	if _, err := s.file.Write(buffer[:]); err != nil {
		s.err = codec.ErrFileWrite
		return s.err
	}
	s.byteCount += wordSize
	return nil
}

// PutByte writes a single byte to the file.
func (s *FileStream) PutByte(b byte) error {
	if _, err := s.file.Write([]byte{b}); err != nil {
		s.err = codec.ErrFileWrite
		return s.err
	}
	s.byteCount++
	return nil
}

// GetBlock reads a block of data at the specified offset in the file,
// saving and restoring the current position.
func (s *FileStream) GetBlock(buffer []byte, offset int64) error {
	position, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return codec.ErrFileSeek
	}
	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return codec.ErrFileSeek
	}
	if _, err := io.ReadFull(s.file, buffer); err != nil {
		return codec.ErrFileRead
	}
	if _, err := s.file.Seek(position, io.SeekStart); err != nil {
		return codec.ErrFileSeek
	}
	return nil
}

// PutBlock writes a block of data at the specified offset in the file,
// saving and restoring the current position.
func (s *FileStream) PutBlock(buffer []byte, offset int64) error {
	position, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return codec.ErrFileSeek
	}
	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return codec.ErrFileSeek
	}
	if _, err := s.file.Write(buffer); err != nil {
		return codec.ErrFileWrite
	}
	if _, err := s.file.Seek(position, io.SeekStart); err != nil {
		return codec.ErrFileSeek
	}
	return nil
}

// Rewind seeks to the start of the file and resets the byte count.
func (s *FileStream) Rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return codec.ErrFileSeek
	}
	s.byteCount = 0
	s.err = nil
	return nil
}

// Skip advances the read cursor by the specified number of bytes.
func (s *FileStream) Skip(size int) error {
	for ; size > 0; size-- {
		s.GetByte()
	}
	return s.err
}

// Pad writes the specified number of zero bytes.
func (s *FileStream) Pad(size int) error {
	for ; size > 0; size-- {
		if err := s.PutByte(0); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the file buffer to disk.
func (s *FileStream) Flush() error {
	if err := s.file.Sync(); err != nil {
		return codec.ErrFileFlush
	}
	return nil
}

// ByteCount returns the cumulative number of bytes read or written.
func (s *FileStream) ByteCount() int64 {
	return s.byteCount
}

// EndOfStream reports whether the read cursor is at the end of the file.
func (s *FileStream) EndOfStream() bool {
	if s.err == codec.ErrEndOfStream {
		return true
	}
	position, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return true
	}
	info, err := s.file.Stat()
	if err != nil {
		return true
	}
	return position >= info.Size()
}

// Err returns the sticky error recorded by a failed operation.
func (s *FileStream) Err() error {
	return s.err
}
