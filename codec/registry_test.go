package codec

import "testing"

type fakeCodec struct {
	name     string
	standard string
}

func (c *fakeCodec) Encode(params EncodeParams) ([]byte, error) { return nil, nil }
func (c *fakeCodec) Decode(data []byte) (*DecodeResult, error)  { return nil, nil }
func (c *fakeCodec) Name() string                               { return c.name }
func (c *fakeCodec) Standard() string                           { return c.standard }

// TestRegistryLookup tests lookup by name and by standard designation.
func TestRegistryLookup(t *testing.T) {
	registry := &Registry{codecs: make(map[string]Codec)}
	fake := &fakeCodec{name: "Fake Codec", standard: "ST 0000"}
	registry.Register(fake)

	byName, err := registry.Get("Fake Codec")
	if err != nil {
		t.Fatalf("lookup by name failed: %v", err)
	}
	if byName != Codec(fake) {
		t.Error("lookup by name returned a different codec")
	}

	byStandard, err := registry.Get("ST 0000")
	if err != nil {
		t.Fatalf("lookup by standard failed: %v", err)
	}
	if byStandard != Codec(fake) {
		t.Error("lookup by standard returned a different codec")
	}

	if _, err := registry.Get("missing"); err != ErrCodecNotFound {
		t.Errorf("missing codec error = %v, want ErrCodecNotFound", err)
	}
}

// TestRegistryList tests that listing deduplicates the two keys.
func TestRegistryList(t *testing.T) {
	registry := &Registry{codecs: make(map[string]Codec)}
	registry.Register(&fakeCodec{name: "A", standard: "SA"})
	registry.Register(&fakeCodec{name: "B", standard: "SB"})

	if got := len(registry.List()); got != 2 {
		t.Errorf("List returned %d codecs, want 2", got)
	}
}

// TestErrorKinds tests the mapping from errors to domain kinds.
func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
	}{
		{nil, KindOkay},
		{ErrUnderflow, KindStream},
		{ErrBadTag, KindSyntax},
		{ErrInvalidBand, KindValue},
		{ErrFileOpen, KindResource},
		{ErrPixelFormat, KindUnsupported},
		{ErrBadArgument, KindApplication},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.kind {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.kind)
		}
	}
}
