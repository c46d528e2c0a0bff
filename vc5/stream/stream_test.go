package stream

import (
	"path/filepath"
	"testing"
)

// TestBufferStreamWords tests word-level writing and reading.
func TestBufferStreamWords(t *testing.T) {
	s := NewBuffer()

	words := []uint32{0x01020304, 0xDEADBEEF, 0x00000000, 0xFFFFFFFF}
	for _, word := range words {
		if err := s.PutWord(word); err != nil {
			t.Fatalf("PutWord(0x%08X) failed: %v", word, err)
		}
	}
	if s.ByteCount() != int64(4*len(words)) {
		t.Errorf("byte count = %d, want %d", s.ByteCount(), 4*len(words))
	}

	if err := s.Rewind(); err != nil {
		t.Fatalf("Rewind failed: %v", err)
	}
	if s.ByteCount() != 0 {
		t.Errorf("byte count after rewind = %d, want 0", s.ByteCount())
	}

	for _, word := range words {
		if got := s.GetWord(); got != word {
			t.Errorf("GetWord() = 0x%08X, want 0x%08X", got, word)
		}
	}
	if !s.EndOfStream() {
		t.Error("expected end of stream")
	}
}

// TestBufferStreamShortRead tests the sticky error on reading past the end.
func TestBufferStreamShortRead(t *testing.T) {
	s := FromBytes([]byte{0x01, 0x02})

	if got := s.GetWord(); got != 0 {
		t.Errorf("short read = 0x%08X, want 0", got)
	}
	if s.Err() == nil {
		t.Error("expected sticky error after short read")
	}
}

// TestBufferStreamBlocks tests positional block access.
func TestBufferStreamBlocks(t *testing.T) {
	s := NewBuffer()
	for i := 0; i < 4; i++ {
		if err := s.PutWord(0); err != nil {
			t.Fatal(err)
		}
	}

	patch := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	if err := s.PutBlock(patch, 4); err != nil {
		t.Fatalf("PutBlock failed: %v", err)
	}

	buffer := make([]byte, 4)
	if err := s.GetBlock(buffer, 4); err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	for i := range patch {
		if buffer[i] != patch[i] {
			t.Errorf("block byte %d = 0x%02X, want 0x%02X", i, buffer[i], patch[i])
		}
	}

	// The write cursor must not move on positional access
	if s.ByteCount() != 16 {
		t.Errorf("byte count after block access = %d, want 16", s.ByteCount())
	}
}

// TestBufferStreamSkipPad tests skipping input and padding output.
func TestBufferStreamSkipPad(t *testing.T) {
	s := NewBuffer()
	if err := s.Pad(6); err != nil {
		t.Fatal(err)
	}
	if s.ByteCount() != 6 {
		t.Errorf("byte count after pad = %d, want 6", s.ByteCount())
	}

	r := FromBytes(s.Bytes())
	if err := r.Skip(4); err != nil {
		t.Fatal(err)
	}
	if r.ByteCount() != 4 {
		t.Errorf("byte count after skip = %d, want 4", r.ByteCount())
	}
}

// TestFileStream tests the file-backed stream through a round trip.
func TestFileStream(t *testing.T) {
	pathname := filepath.Join(t.TempDir(), "stream.bin")

	w, err := Create(pathname)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	words := []uint32{0x11223344, 0x55667788}
	for _, word := range words {
		if err := w.PutWord(word); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.PutByte(0x99); err != nil {
		t.Fatal(err)
	}

	// Back-patch the first word
	if err := w.PutBlock([]byte{0xAA, 0xBB, 0xCC, 0xDD}, 0); err != nil {
		t.Fatalf("PutBlock failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(pathname)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if got := r.GetWord(); got != 0xDDCCBBAA {
		t.Errorf("patched word = 0x%08X, want 0xDDCCBBAA", got)
	}
	if got := r.GetWord(); got != words[1] {
		t.Errorf("second word = 0x%08X, want 0x%08X", got, words[1])
	}
	if got := r.GetByte(); got != 0x99 {
		t.Errorf("byte = 0x%02X, want 0x99", got)
	}
	if !r.EndOfStream() {
		t.Error("expected end of stream")
	}

	if err := r.Rewind(); err != nil {
		t.Fatal(err)
	}
	if r.ByteCount() != 0 {
		t.Errorf("byte count after rewind = %d, want 0", r.ByteCount())
	}
}
