package encoder

import (
	log "github.com/sirupsen/logrus"

	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
	"github.com/cocosip/go-vc5-codec/vc5/component"
	"github.com/cocosip/go-vc5-codec/vc5/entropy"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
	"github.com/cocosip/go-vc5-codec/vc5/syntax"
	"github.com/cocosip/go-vc5-codec/vc5/wavelet"
)

// Encoder encodes component arrays into a VC-5 bitstream. An encoder
// instance is not safe for concurrent use; the shared codebook and
// companding tables are read-only and may be used by multiple instances.
type Encoder struct {
	params  Parameters
	codeSet *entropy.CodeSet

	// Log receives progress and diagnostic output. The logger replaces
	// the global log file of earlier implementations and is never used
	// inside the filter kernels.
	Log *log.Logger

	transforms []*wavelet.Transform
}

// New creates an encoder with the specified parameters.
func New(params Parameters) (*Encoder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	logger := log.New()
	if !params.Verbose {
		logger.SetLevel(log.WarnLevel)
	}

	return &Encoder{
		params:  params,
		codeSet: entropy.CodeSet17,
		Log:     logger,
	}, nil
}

// EncodeImage encodes a packed image to the byte stream.
func (e *Encoder) EncodeImage(packed []byte, output stream.Stream) error {
	unpacker, err := component.NewUnpacker(e.params.PixelFormat)
	if err != nil {
		return err
	}

	channels, err := unpacker.Unpack(packed, e.params.Width, e.params.Height, e.params.BitsPerComponent)
	if err != nil {
		return err
	}

	return e.EncodeChannels(channels, output)
}

// EncodeChannels encodes per-channel component arrays to the byte stream.
func (e *Encoder) EncodeChannels(channels []*component.Array, output stream.Stream) error {
	if len(channels) == 0 || len(channels) > vc5.MaxChannelCount {
		return codec.ErrInvalidChannel
	}

	bits := bitstream.New(output)

	if err := e.writeHeader(bits, len(channels)); err != nil {
		return err
	}

	for channelNumber, channel := range channels {
		if err := e.encodeChannel(bits, channelNumber, channel); err != nil {
			return err
		}
	}

	if err := e.writeTrailer(bits); err != nil {
		return err
	}

	if depth := bits.SampleOffsetDepth(); depth != 0 {
		e.Log.WithField("depth", depth).Error("sample offset stack not balanced")
		return codec.ErrSyntax
	}

	return bits.Flush()
}

// writeHeader writes the bitstream start marker and the header parameters.
func (e *Encoder) writeHeader(bits *bitstream.BitStream, channelCount int) error {
	p := &e.params

	if err := syntax.PutTagValue(bits, vc5.TagBitstreamMarker, vc5.MarkerBitstreamStart); err != nil {
		return err
	}
	if err := syntax.PutTagValueOptional(bits, vc5.TagVersion,
		vc5.PackVersion(vc5.VersionMajor, vc5.VersionMinor, vc5.VersionRevision)); err != nil {
		return err
	}
	if err := syntax.PutTagValueOptional(bits, vc5.TagEnabledParts, uint16(p.EnabledParts)); err != nil {
		return err
	}

	if err := syntax.PutTagValue(bits, vc5.TagImageWidth, uint16(p.Width)); err != nil {
		return err
	}
	if err := syntax.PutTagValue(bits, vc5.TagImageHeight, uint16(p.Height)); err != nil {
		return err
	}

	if p.EnabledParts.Enabled(vc5.PartImageFormats) {
		if err := syntax.PutTagValue(bits, vc5.TagImageFormat, uint16(p.ImageFormat)); err != nil {
			return err
		}
		if err := syntax.PutTagValue(bits, vc5.TagPatternWidth, uint16(p.PatternWidth)); err != nil {
			return err
		}
		if err := syntax.PutTagValue(bits, vc5.TagPatternHeight, uint16(p.PatternHeight)); err != nil {
			return err
		}
		components := p.ComponentsPerSample
		if components == 0 {
			components = channelCount
		}
		if err := syntax.PutTagValue(bits, vc5.TagComponentsPerSample, uint16(components)); err != nil {
			return err
		}
		if err := syntax.PutTagValue(bits, vc5.TagMaxBitsPerComponent,
			uint16(vc5.InputPrecision(p.PixelFormat))); err != nil {
			return err
		}
	}

	if err := syntax.PutTagValue(bits, vc5.TagChannelCount, uint16(channelCount)); err != nil {
		return err
	}
	if err := syntax.PutTagValue(bits, vc5.TagSubbandCount, vc5.MaxSubbandCount); err != nil {
		return err
	}
	if err := syntax.PutTagValue(bits, vc5.TagBitsPerComponent, uint16(p.BitsPerComponent)); err != nil {
		return err
	}
	if err := syntax.PutTagValue(bits, vc5.TagLowpassPrecision, uint16(p.LowpassPrecision)); err != nil {
		return err
	}

	// The prescale segment is omitted when the table equals the default
	// for the encoded precision
	if p.Prescale != nil && *p.Prescale != vc5.DefaultPrescale(p.BitsPerComponent) {
		if err := syntax.PutTagValue(bits, vc5.TagPrescaleShift, vc5.PackPrescale(*p.Prescale)); err != nil {
			return err
		}
	}

	if p.IncludeIdentifier {
		if err := p.Identifier.Write(bits); err != nil {
			return err
		}
	}

	return nil
}

// writeTrailer writes the bitstream end marker.
func (e *Encoder) writeTrailer(bits *bitstream.BitStream) error {
	return syntax.PutTagValue(bits, vc5.TagBitstreamMarker, vc5.MarkerBitstreamEnd)
}

// encodeChannel runs the forward wavelet cascade on one channel and emits
// the channel header and the subbands in decode order.
func (e *Encoder) encodeChannel(bits *bitstream.BitStream, channelNumber int, channel *component.Array) error {
	p := &e.params

	transform := wavelet.NewTransform(channel.Width, channel.Height)
	if p.Prescale != nil {
		transform.Prescale = *p.Prescale
	} else {
		transform.SetPrescale(p.BitsPerComponent)
	}
	transform.SetScale()
	transform.SetQuantization(p.Quantization)

	e.Log.WithFields(log.Fields{
		"channel": channelNumber,
		"width":   channel.Width,
		"height":  channel.Height,
	}).Debug("forward transform")

	// Level zero takes the component array as input; each subsequent
	// level takes the lowpass band of the previous level
	input := func(row int) []int16 { return channel.Row(row) }
	width, height := channel.Width, channel.Height

	for level := 0; level < vc5.MaxWaveletCount; level++ {
		output := transform.Wavelets[level]
		prescale := int(transform.Prescale[level])

		if err := wavelet.ForwardWavelet(input, width, height, output, prescale, p.MidpointSetting); err != nil {
			return err
		}

		input = func(row int) []int16 { return output.Row(vc5.LLBand, row) }
		width, height = output.Width, output.Height
	}

	if err := syntax.PutTagValue(bits, vc5.TagChannelNumber, uint16(channelNumber)); err != nil {
		return err
	}
	if channel.Width != p.Width || channel.Height != p.Height {
		if err := syntax.PutTagValue(bits, vc5.TagChannelWidth, uint16(channel.Width)); err != nil {
			return err
		}
		if err := syntax.PutTagValue(bits, vc5.TagChannelHeight, uint16(channel.Height)); err != nil {
			return err
		}
	}

	for subband := 0; subband < vc5.MaxSubbandCount; subband++ {
		if err := e.encodeSubband(bits, transform, subband); err != nil {
			return err
		}
	}

	return nil
}

// encodeSubband emits the subband header and the band data chunk.
func (e *Encoder) encodeSubband(bits *bitstream.BitStream, transform *wavelet.Transform, subband int) error {
	w := transform.Wavelets[vc5.SubbandWavelet(subband)]
	band := vc5.SubbandBand(subband)

	if !w.AllBandsValid() {
		return codec.ErrInvalidBand
	}

	if err := syntax.PutTagValue(bits, vc5.TagSubbandNumber, uint16(subband)); err != nil {
		return err
	}
	if err := syntax.PutTagValue(bits, vc5.TagQuantization, uint16(w.Quant[band])); err != nil {
		return err
	}

	if err := syntax.BeginChunk(bits, syntax.OptionalTag(vc5.TagLargeCodeblock)); err != nil {
		return err
	}

	if subband == 0 {
		if err := entropy.EncodeLowpassBand(bits, w.Data[band], e.params.LowpassPrecision); err != nil {
			return err
		}
		if err := bits.PadSegment(); err != nil {
			return err
		}
	} else {
		if err := e.codeSet.EncodeBand(bits, w.Data[band]); err != nil {
			return err
		}
	}

	return syntax.EndChunk(bits)
}
