// Package decoder implements the top-level decoding pipeline: the segment
// state machine, entropy decoding of the subbands, the inverse wavelet
// cascade, and packing of the reconstructed component arrays.
package decoder

import (
	log "github.com/sirupsen/logrus"

	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
	"github.com/cocosip/go-vc5-codec/vc5/component"
	"github.com/cocosip/go-vc5-codec/vc5/entropy"
	"github.com/cocosip/go-vc5-codec/vc5/identifier"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
	"github.com/cocosip/go-vc5-codec/vc5/syntax"
	"github.com/cocosip/go-vc5-codec/vc5/wavelet"
)

// Parameters control one decoding.
type Parameters struct {
	// OutputFormat selects the packing of the decoded image. Leave unknown
	// to receive raw component arrays.
	OutputFormat vc5.PixelFormat

	// EnabledParts restricts the parts the decoder accepts.
	EnabledParts vc5.EnabledParts

	// Verbose enables progress logging.
	Verbose bool
}

// Decoder decodes a VC-5 bitstream. A decoder instance is not safe for
// concurrent use.
type Decoder struct {
	params  Parameters
	codeSet *entropy.CodeSet

	// Log receives progress and diagnostic output.
	Log *log.Logger

	state      syntax.State
	transforms [vc5.MaxChannelCount]*wavelet.Transform
	channels   [vc5.MaxChannelCount]*component.Array

	// Identifier is the unique image identifier parsed from the
	// bitstream, if present.
	Identifier    identifier.Identifier
	HasIdentifier bool
}

// New creates a decoder with the specified parameters.
func New(params Parameters) *Decoder {
	if params.EnabledParts == 0 {
		params.EnabledParts = vc5.DefaultEnabledParts
	}

	logger := log.New()
	if !params.Verbose {
		logger.SetLevel(log.WarnLevel)
	}

	return &Decoder{
		params:  params,
		codeSet: entropy.CodeSet17,
		Log:     logger,
	}
}

// DecodeChannels decodes the bitstream and returns the reconstructed
// component arrays in channel order.
func (d *Decoder) DecodeChannels(input stream.Stream) ([]*component.Array, error) {
	bits := bitstream.New(input)
	d.state.Prepare()

	segment := syntax.GetSegment(bits)
	if err := bits.Err(); err != nil {
		return nil, err
	}
	if segment.Tag != int16(vc5.TagBitstreamMarker) || segment.Value != vc5.MarkerBitstreamStart {
		return nil, codec.ErrMissingStartMarker
	}

	for {
		segment = syntax.GetSegment(bits)
		if err := bits.Err(); err != nil {
			return nil, err
		}

		if segment.Tag == int16(vc5.TagBitstreamMarker) && segment.Value == vc5.MarkerBitstreamEnd {
			break
		}

		if syntax.IsChunkTag(segment.Tag) {
			if err := d.decodeChunk(bits, segment); err != nil {
				return nil, err
			}
			continue
		}

		if err := d.state.Update(segment); err != nil {
			return nil, err
		}
	}

	channelCount := d.state.ChannelCount
	if channelCount == 0 {
		return nil, codec.ErrSyntax
	}

	channels := make([]*component.Array, channelCount)
	for i := 0; i < channelCount; i++ {
		if d.channels[i] == nil {
			return nil, codec.ErrSyntax
		}
		channels[i] = d.channels[i]
	}

	return channels, nil
}

// DecodeImage decodes the bitstream and packs the reconstructed channels
// into the output pixel format.
func (d *Decoder) DecodeImage(input stream.Stream) ([]byte, int, int, error) {
	channels, err := d.DecodeChannels(input)
	if err != nil {
		return nil, 0, 0, err
	}

	packer, err := component.NewPacker(d.params.OutputFormat)
	if err != nil {
		return nil, 0, 0, err
	}

	width := d.state.ImageWidth
	height := d.state.ImageHeight

	packed, err := packer.Pack(channels, width, height)
	if err != nil {
		return nil, 0, 0, err
	}

	return packed, width, height, nil
}

// decodeChunk interprets one chunk element. Codeblock chunks carry the
// band data for the current channel and subband; the unique image
// identifier is parsed; any other chunk is skipped over its payload.
func (d *Decoder) decodeChunk(bits *bitstream.BitStream, segment syntax.Segment) error {
	size := syntax.ChunkSize(segment)
	tag := syntax.RequiredTag(segment.Tag)

	switch {
	case tag>>8 == vc5.LargeCodeblockPrefix:
		return d.decodeBand(bits)

	case tag == int16(vc5.TagUniqueImageIdentifier):
		id, err := identifier.Parse(bits, size)
		if err != nil {
			return err
		}
		d.Identifier = id
		d.HasIdentifier = true
		return nil

	default:
		if !syntax.IsOptional(segment.Tag) {
			return codec.ErrInvalidTag
		}
		return bits.SkipPayload(size)
	}
}

// transform returns the transform for the current channel, allocating the
// wavelets lazily once the channel dimensions are known.
func (d *Decoder) transform() (*wavelet.Transform, error) {
	number := d.state.ChannelNumber
	if number >= vc5.MaxChannelCount {
		return nil, codec.ErrInvalidChannel
	}

	if d.transforms[number] == nil {
		width := d.state.ChannelWidth
		height := d.state.ChannelHeight
		// The inverse border filters need at least three rows and three
		// columns in the smallest wavelet
		if width < 24 || height < 24 || width%4 != 0 || height%4 != 0 {
			return nil, codec.ErrImageDimensions
		}

		transform := wavelet.NewTransform(width, height)
		transform.Prescale = d.state.PrescaleTable
		transform.SetScale()
		d.transforms[number] = transform

		d.Log.WithFields(log.Fields{
			"channel": number,
			"width":   width,
			"height":  height,
		}).Debug("allocated transform")
	}

	return d.transforms[number], nil
}

// decodeBand decodes the band data for the current subband into its
// wavelet band and reconstructs the channel when all subbands are present.
func (d *Decoder) decodeBand(bits *bitstream.BitStream) error {
	transform, err := d.transform()
	if err != nil {
		return err
	}

	subband := d.state.SubbandNumber
	if subband >= d.state.SubbandCount {
		return codec.ErrInvalidSubband
	}

	w := transform.Wavelets[vc5.SubbandWavelet(subband)]
	band := vc5.SubbandBand(subband)

	if subband == 0 {
		offset := 0
		if d.params.OutputFormat != vc5.PixelFormatUnknown {
			offset = LowpassChannelOffset(&d.state, d.params.OutputFormat)
		}
		if err := entropy.DecodeLowpassBand(bits, w.Data[band], d.state.LowpassPrecision, offset); err != nil {
			return err
		}
		bits.AlignSegment()
		if err := bits.Err(); err != nil {
			return err
		}
	} else {
		if err := d.codeSet.DecodeBand(bits, w.Data[band]); err != nil {
			return err
		}
	}

	w.Quant[band] = d.state.Quantization
	if err := w.MarkBandValid(band); err != nil {
		return err
	}

	if d.channelComplete() {
		return d.reconstructChannel(transform)
	}

	return nil
}

// channelComplete reports whether every transmitted band of the current
// channel has been decoded. The highest wavelet receives all four bands
// from the bitstream; the lower wavelets receive only their highpass
// bands, since their lowpass bands are reconstructed during decoding.
func (d *Decoder) channelComplete() bool {
	transform := d.transforms[d.state.ChannelNumber]
	if transform == nil {
		return false
	}

	highpassMask := wavelet.BandValidMask(vc5.LHBand) |
		wavelet.BandValidMask(vc5.HLBand) |
		wavelet.BandValidMask(vc5.HHBand)

	for level, w := range transform.Wavelets {
		if w == nil {
			return false
		}
		if level == vc5.MaxWaveletCount-1 {
			if !w.AllBandsValid() {
				return false
			}
		} else if w.ValidBandMask&highpassMask != highpassMask {
			return false
		}
	}
	return true
}

// reconstructChannel applies the inverse wavelet cascade to the decoded
// subbands, producing the component array for the current channel.
func (d *Decoder) reconstructChannel(transform *wavelet.Transform) error {
	width := d.state.ChannelWidth
	height := d.state.ChannelHeight

	d.Log.WithField("channel", d.state.ChannelNumber).Debug("reconstructing channel")

	// Invert the upper levels into the lowpass band of the level below
	for level := vc5.MaxWaveletCount - 1; level > 0; level-- {
		input := transform.Wavelets[level]
		output := transform.Wavelets[level-1]
		descale := int(transform.Prescale[level])

		if !input.AllBandsValid() {
			return codec.ErrInvalidBand
		}

		wavelet.InvertSpatialQuant(input, output.Width, output.Height, descale,
			func(row int) []int16 { return output.Row(vc5.LLBand, row) })

		if err := output.MarkBandValid(vc5.LLBand); err != nil {
			return err
		}
	}

	// Invert the first level into the component array
	result := component.NewArray(width, height, d.state.BitsPerComponent)
	descale := int(transform.Prescale[0])

	wavelet.InvertSpatialQuant(transform.Wavelets[0], width, height, descale,
		func(row int) []int16 { return result.Row(row) })

	d.channels[d.state.ChannelNumber] = result
	return nil
}

// State returns the codec state after decoding, primarily for inspection
// by tests and tools.
func (d *Decoder) State() *syntax.State {
	return &d.state
}
