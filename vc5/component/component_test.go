package component

import (
	"testing"

	"github.com/cocosip/go-vc5-codec/vc5"
)

// TestUnpackPackRoundTrip tests that packing reverses unpacking for the
// implemented pixel formats.
func TestUnpackPackRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		format    vc5.PixelFormat
		channels  int
		precision int
	}{
		{"RG48 12-bit", vc5.PixelFormatRG48, 3, 12},
		{"RG48 14-bit", vc5.PixelFormatRG48, 3, 14},
		{"B64A 12-bit", vc5.PixelFormatB64A, 4, 12},
	}

	const width, height = 8, 4

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := uint(16 - tt.precision)

			// Samples with only the significant bits set survive the
			// precision reduction exactly
			packedSize := width * height * tt.channels * 2
			original := make([]byte, packedSize)
			for i := 0; i < packedSize/2; i++ {
				value := uint16(i*31%(1<<uint(tt.precision))) << shift
				if tt.format == vc5.PixelFormatB64A {
					original[2*i] = byte(value >> 8)
					original[2*i+1] = byte(value)
				} else {
					original[2*i] = byte(value)
					original[2*i+1] = byte(value >> 8)
				}
			}

			unpacker, err := NewUnpacker(tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if unpacker.ChannelCount() != tt.channels {
				t.Fatalf("channel count = %d, want %d", unpacker.ChannelCount(), tt.channels)
			}

			channels, err := unpacker.Unpack(original, width, height, tt.precision)
			if err != nil {
				t.Fatalf("Unpack failed: %v", err)
			}
			if len(channels) != tt.channels {
				t.Fatalf("unpacked %d channels, want %d", len(channels), tt.channels)
			}

			for _, channel := range channels {
				if channel.Width != width || channel.Height != height {
					t.Fatalf("channel dimensions = %dx%d", channel.Width, channel.Height)
				}
				for _, value := range channel.Data {
					if int(value) < 0 || int(value) >= 1<<uint(tt.precision) {
						t.Fatalf("sample %d outside %d-bit range", value, tt.precision)
					}
				}
			}

			packer, err := NewPacker(tt.format)
			if err != nil {
				t.Fatal(err)
			}
			packed, err := packer.Pack(channels, width, height)
			if err != nil {
				t.Fatalf("Pack failed: %v", err)
			}

			if len(packed) != len(original) {
				t.Fatalf("packed %d bytes, want %d", len(packed), len(original))
			}
			for i := range original {
				if packed[i] != original[i] {
					t.Fatalf("byte %d = 0x%02X, want 0x%02X", i, packed[i], original[i])
				}
			}
		})
	}
}

// TestUnsupportedFormat tests the error for formats handled by external
// collaborators.
func TestUnsupportedFormat(t *testing.T) {
	if _, err := NewUnpacker(vc5.PixelFormatNV12); err == nil {
		t.Error("NV12 unpacking should not be available")
	}
	if _, err := NewPacker(vc5.PixelFormatBYR4); err == nil {
		t.Error("BYR4 packing should not be available")
	}
}

// TestArrayRows tests row addressing in a component array.
func TestArrayRows(t *testing.T) {
	array := NewArray(4, 3, 12)
	for row := 0; row < 3; row++ {
		slice := array.Row(row)
		if len(slice) != 4 {
			t.Fatalf("row length = %d, want 4", len(slice))
		}
		for column := range slice {
			slice[column] = int16(row*10 + column)
		}
	}
	if array.Data[5] != 11 {
		t.Errorf("flat index 5 = %d, want 11", array.Data[5])
	}
}
