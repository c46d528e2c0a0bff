// Package component implements the component arrays that hold one color
// channel of unpacked image data and the row unpacking and packing for the
// pixel formats supported by the reference codec. Formats that are not
// implemented here remain external collaborators behind the Unpacker and
// Packer interfaces.
package component

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
)

// Array is a two-dimensional array of signed coefficients for one color
// channel. The array owns its storage.
type Array struct {
	Width            int
	Height           int
	BitsPerComponent int
	Data             []int16
}

// NewArray allocates a component array with the specified dimensions.
func NewArray(width, height, bitsPerComponent int) *Array {
	return &Array{
		Width:            width,
		Height:           height,
		BitsPerComponent: bitsPerComponent,
		Data:             make([]int16, width*height),
	}
}

// Row returns one row of the component array.
func (a *Array) Row(row int) []int16 {
	start := row * a.Width
	return a.Data[start : start+a.Width]
}

// Unpacker converts a packed image into per-channel component arrays.
type Unpacker interface {
	// Unpack converts packed rows into component arrays with the
	// specified encoded precision.
	Unpack(packed []byte, width, height, precision int) ([]*Array, error)

	// ChannelCount returns the number of channels the format unpacks to.
	ChannelCount() int
}

// Packer converts per-channel component arrays into a packed image.
type Packer interface {
	// Pack converts component arrays into packed rows.
	Pack(channels []*Array, width, height int) ([]byte, error)
}

// NewUnpacker returns the unpacker for a pixel format.
func NewUnpacker(format vc5.PixelFormat) (Unpacker, error) {
	switch format {
	case vc5.PixelFormatRG48:
		return rg48{}, nil
	case vc5.PixelFormatB64A:
		return b64a{}, nil
	default:
		return nil, codec.ErrPixelFormat
	}
}

// NewPacker returns the packer for a pixel format.
func NewPacker(format vc5.PixelFormat) (Packer, error) {
	switch format {
	case vc5.PixelFormatRG48:
		return rg48{}, nil
	case vc5.PixelFormatB64A:
		return b64a{}, nil
	default:
		return nil, codec.ErrPixelFormat
	}
}

// rg48 is 16 bits per component RGB with the components interleaved in
// little-endian byte order.
type rg48 struct{}

func (rg48) ChannelCount() int { return 3 }

func (rg48) Unpack(packed []byte, width, height, precision int) ([]*Array, error) {
	const channelCount = 3

	rowSize := width * channelCount * 2
	if len(packed) < rowSize*height {
		return nil, codec.ErrImageDimensions
	}

	shift := uint(16 - precision)

	channels := make([]*Array, channelCount)
	for channel := range channels {
		channels[channel] = NewArray(width, height, precision)
	}

	for row := 0; row < height; row++ {
		input := packed[row*rowSize:]
		for column := 0; column < width; column++ {
			for channel := 0; channel < channelCount; channel++ {
				offset := (column*channelCount + channel) * 2
				value := uint16(input[offset]) | uint16(input[offset+1])<<8
				channels[channel].Row(row)[column] = int16(value >> shift)
			}
		}
	}

	return channels, nil
}

func (rg48) Pack(channels []*Array, width, height int) ([]byte, error) {
	const channelCount = 3

	if len(channels) < channelCount {
		return nil, codec.ErrImageDimensions
	}

	rowSize := width * channelCount * 2
	packed := make([]byte, rowSize*height)
	shift := uint(16 - channels[0].BitsPerComponent)

	for row := 0; row < height; row++ {
		output := packed[row*rowSize:]
		for column := 0; column < width; column++ {
			for channel := 0; channel < channelCount; channel++ {
				value := uint16(channels[channel].Row(row)[column]) << shift
				offset := (column*channelCount + channel) * 2
				output[offset] = byte(value)
				output[offset+1] = byte(value >> 8)
			}
		}
	}

	return packed, nil
}

// b64a is 16 bits per component ARGB with the components interleaved in
// big-endian byte order. The alpha component is stored first in the file
// but carried as the last channel.
type b64a struct{}

func (b64a) ChannelCount() int { return 4 }

// fileOrder maps the channel number to the position of the component
// within one packed pixel.
var b64aFileOrder = [4]int{1, 2, 3, 0} // R, G, B, A

func (b64a) Unpack(packed []byte, width, height, precision int) ([]*Array, error) {
	const channelCount = 4

	rowSize := width * channelCount * 2
	if len(packed) < rowSize*height {
		return nil, codec.ErrImageDimensions
	}

	shift := uint(16 - precision)

	channels := make([]*Array, channelCount)
	for channel := range channels {
		channels[channel] = NewArray(width, height, precision)
	}

	for row := 0; row < height; row++ {
		input := packed[row*rowSize:]
		for column := 0; column < width; column++ {
			for channel := 0; channel < channelCount; channel++ {
				offset := (column*channelCount + b64aFileOrder[channel]) * 2
				value := uint16(input[offset])<<8 | uint16(input[offset+1])
				channels[channel].Row(row)[column] = int16(value >> shift)
			}
		}
	}

	return channels, nil
}

func (b64a) Pack(channels []*Array, width, height int) ([]byte, error) {
	const channelCount = 4

	if len(channels) < channelCount {
		return nil, codec.ErrImageDimensions
	}

	rowSize := width * channelCount * 2
	packed := make([]byte, rowSize*height)
	shift := uint(16 - channels[0].BitsPerComponent)

	for row := 0; row < height; row++ {
		output := packed[row*rowSize:]
		for column := 0; column < width; column++ {
			for channel := 0; channel < channelCount; channel++ {
				value := uint16(channels[channel].Row(row)[column]) << shift
				offset := (column*channelCount + b64aFileOrder[channel]) * 2
				output[offset] = byte(value >> 8)
				output[offset+1] = byte(value)
			}
		}
	}

	return packed, nil
}
