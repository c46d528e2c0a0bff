// Package encoder implements the top-level encoding pipeline: unpacking
// the input image into component arrays, the forward wavelet cascade with
// per-subband quantization, and emission of the tag-value framed bitstream.
package encoder

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/identifier"
	"github.com/cocosip/go-vc5-codec/vc5/quant"
)

// Parameters control one encoding.
type Parameters struct {
	Width  int
	Height int

	PixelFormat vc5.PixelFormat
	ImageFormat vc5.ImageFormat

	// BitsPerComponent is the encoded precision.
	BitsPerComponent int

	// LowpassPrecision is the number of bits per encoded lowpass
	// coefficient.
	LowpassPrecision int

	// Quantization is the table of divisors indexed by subband number.
	Quantization [vc5.MaxSubbandCount]int

	// Prescale overrides the default prescale table for the encoded
	// precision. Leave nil to use the default, in which case the
	// prescale segment is omitted from the bitstream.
	Prescale *[vc5.MaxPrescaleCount]uint8

	// MidpointSetting selects the rounding applied before quantization.
	MidpointSetting int

	PatternWidth        int
	PatternHeight       int
	ComponentsPerSample int

	EnabledParts vc5.EnabledParts

	// IncludeIdentifier writes the unique image identifier chunk.
	IncludeIdentifier bool
	Identifier        identifier.Identifier

	// Verbose enables progress logging.
	Verbose bool
}

// NewParameters returns the default encoding parameters for an image with
// the specified dimensions and pixel format.
func NewParameters(width, height int, format vc5.PixelFormat) Parameters {
	return Parameters{
		Width:            width,
		Height:           height,
		PixelFormat:      format,
		ImageFormat:      vc5.DefaultImageFormat(format),
		BitsPerComponent: vc5.EncodedPrecision(format),
		LowpassPrecision: 16,
		Quantization:     quant.DefaultQuantization,
		MidpointSetting:  quant.DefaultMidpoint,
		PatternWidth:     1,
		PatternHeight:    1,
		EnabledParts:     vc5.DefaultEnabledParts,
	}
}

// Validate checks the encoding parameters.
func (p *Parameters) Validate() error {
	// The wavelet cascade requires even band dimensions at every level
	// and at least six columns and rows for the border filters
	if p.Width < 24 || p.Height < 24 || p.Width%4 != 0 || p.Height%4 != 0 {
		return codec.ErrImageDimensions
	}
	if p.ImageFormat == vc5.ImageFormatBayer && (p.Width%8 != 0 || p.Height%8 != 0) {
		return codec.ErrImageDimensions
	}
	if p.BitsPerComponent < 8 || p.BitsPerComponent > 16 {
		return codec.ErrBitsPerComponent
	}
	if p.LowpassPrecision < 8 || p.LowpassPrecision > 16 {
		return codec.ErrLowpassPrecision
	}
	if p.Quantization[0] != 1 {
		return codec.ErrInvalidQuant
	}
	for _, divisor := range p.Quantization {
		if divisor < 1 {
			return codec.ErrInvalidQuant
		}
	}
	if !p.EnabledParts.Enabled(vc5.PartElementaryBitstream) {
		return codec.ErrEnabledParts
	}
	return nil
}
