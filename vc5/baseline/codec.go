// Package baseline provides the VC-5 baseline profile codec behind the
// universal codec interface.
package baseline

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/decoder"
	"github.com/cocosip/go-vc5-codec/vc5/encoder"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
)

var _ codec.Codec = (*Codec)(nil)

const baselineName = "VC-5 Baseline"

// Codec implements the VC-5 baseline profile codec.
type Codec struct{}

// NewCodec creates a new VC-5 baseline codec.
func NewCodec() *Codec {
	return &Codec{}
}

func init() {
	codec.Register(NewCodec())
}

// Name returns the codec name.
func (c *Codec) Name() string {
	return baselineName
}

// Standard returns the designation of the standard the codec implements.
func (c *Codec) Standard() string {
	return "SMPTE ST 2073"
}

// pixelFormatForComponents maps the component count of interleaved 16-bit
// pixel data onto a supported pixel format.
func pixelFormatForComponents(components int) (vc5.PixelFormat, error) {
	switch components {
	case 3:
		return vc5.PixelFormatRG48, nil
	case 4:
		return vc5.PixelFormatB64A, nil
	default:
		return vc5.PixelFormatUnknown, codec.ErrPixelFormat
	}
}

// Encode encodes pixel data into a VC-5 bitstream.
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	format, err := pixelFormatForComponents(params.Components)
	if err != nil {
		return nil, err
	}

	encodeParams := encoder.NewParameters(params.Width, params.Height, format)
	if options, ok := params.Options.(*Options); ok {
		if err := options.Validate(); err != nil {
			return nil, err
		}
		encodeParams.Quantization = options.Quantization
	}

	enc, err := encoder.New(encodeParams)
	if err != nil {
		return nil, err
	}

	output := stream.NewBuffer()
	if err := enc.EncodeImage(params.PixelData, output); err != nil {
		return nil, err
	}

	return output.Bytes(), nil
}

// Decode decodes a VC-5 bitstream.
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	// Probe the channel count before committing to an output format
	probe := decoder.New(decoder.Parameters{})
	channels, err := probe.DecodeChannels(stream.FromBytes(data))
	if err != nil {
		return nil, err
	}

	format, err := pixelFormatForComponents(len(channels))
	if err != nil {
		return nil, err
	}

	dec := decoder.New(decoder.Parameters{OutputFormat: format})
	packed, width, height, err := dec.DecodeImage(stream.FromBytes(data))
	if err != nil {
		return nil, err
	}

	return &codec.DecodeResult{
		PixelData:  packed,
		Width:      width,
		Height:     height,
		Components: len(channels),
		BitDepth:   16,
	}, nil
}

// Options are the codec-specific encoding options.
type Options struct {
	Quantization [vc5.MaxSubbandCount]int
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.Quantization[0] != 1 {
		return codec.ErrInvalidQuant
	}
	for _, divisor := range o.Quantization {
		if divisor < 1 {
			return codec.ErrInvalidQuant
		}
	}
	return nil
}
