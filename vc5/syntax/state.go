package syntax

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
)

// State is the bag of codec parameters that is incrementally updated as the
// decoder consumes segments. The encoder does not insert a parameter into
// the bitstream when its value equals the value already in the state, so
// the state must be prepared with the defaults a decoder can infer.
type State struct {
	ChannelNumber int
	SubbandNumber int
	SubbandCount  int
	ChannelCount  int

	ImageWidth  int
	ImageHeight int

	ChannelWidth  int
	ChannelHeight int

	BitsPerComponent    int
	MaxBitsPerComponent int
	LowpassPrecision    int

	// Quantization is the divisor that applies to the current subband.
	Quantization int

	PrescaleTable [vc5.MaxPrescaleCount]uint8

	ImageFormat         vc5.ImageFormat
	PatternWidth        int
	PatternHeight       int
	ComponentsPerSample int

	// Frame structure flags
	Progressive   bool
	TopFieldFirst bool
	FrameInverted bool

	// Band coding flags
	ActiveCodebook   int
	DifferenceCoding bool

	GroupLength int

	LayerNumber      int
	LayerCount       int
	DecodedLayerMask uint32

	EnabledParts vc5.EnabledParts

	Version [3]uint8
}

// Prepare initializes the codec state to the defaults assumed before
// encoding or decoding a bitstream.
func (s *State) Prepare() {
	*s = State{}

	s.SubbandCount = vc5.MaxSubbandCount
	s.BitsPerComponent = 12
	s.LowpassPrecision = 16
	s.Quantization = 1
	s.ActiveCodebook = 1
	s.Progressive = true
	s.TopFieldFirst = true
	s.EnabledParts = vc5.DefaultEnabledParts
}

// Update applies one segment to the codec state. Segments that do not
// carry a state parameter are ignored; a value error is returned when a
// parameter is out of range.
func (s *State) Update(segment Segment) error {
	tag := vc5.Tag(RequiredTag(segment.Tag))
	value := segment.Value

	switch tag {
	case vc5.TagChannelNumber:
		if int(value) >= vc5.MaxChannelCount {
			return codec.ErrInvalidChannel
		}
		s.ChannelNumber = int(value)

	case vc5.TagSubbandNumber:
		if int(value) >= vc5.MaxSubbandCount {
			return codec.ErrInvalidSubband
		}
		s.SubbandNumber = int(value)

	case vc5.TagSubbandCount:
		if int(value) > vc5.MaxSubbandCount {
			return codec.ErrInvalidSubband
		}
		s.SubbandCount = int(value)

	case vc5.TagChannelCount:
		if int(value) > vc5.MaxChannelCount {
			return codec.ErrInvalidChannel
		}
		s.ChannelCount = int(value)

	case vc5.TagImageWidth:
		s.ImageWidth = int(value)
		// The first channel has the same dimensions as the image
		s.ChannelWidth = int(value)

	case vc5.TagImageHeight:
		s.ImageHeight = int(value)
		s.ChannelHeight = int(value)

	case vc5.TagChannelWidth:
		s.ChannelWidth = int(value)

	case vc5.TagChannelHeight:
		s.ChannelHeight = int(value)

	case vc5.TagBitsPerComponent:
		if value == 0 || value > 16 {
			return codec.ErrBitsPerComponent
		}
		s.BitsPerComponent = int(value)
		// The encoder omits the prescale segment when the table equals
		// the default for the encoded precision
		s.PrescaleTable = vc5.DefaultPrescale(int(value))

	case vc5.TagMaxBitsPerComponent:
		s.MaxBitsPerComponent = int(value)

	case vc5.TagLowpassPrecision:
		if value < 8 || value > 16 {
			return codec.ErrLowpassPrecision
		}
		s.LowpassPrecision = int(value)

	case vc5.TagQuantization:
		s.Quantization = int(value)

	case vc5.TagPrescaleShift:
		s.PrescaleTable = vc5.UnpackPrescale(value)

	case vc5.TagImageFormat:
		format := vc5.ImageFormat(value)
		if !format.Valid() {
			return codec.ErrImageFormat
		}
		s.ImageFormat = format

	case vc5.TagPatternWidth:
		if value == 0 {
			return codec.ErrPatternDimensions
		}
		s.PatternWidth = int(value)

	case vc5.TagPatternHeight:
		if value == 0 {
			return codec.ErrPatternDimensions
		}
		s.PatternHeight = int(value)

	case vc5.TagComponentsPerSample:
		if value == 0 || int(value) > vc5.MaxChannelCount {
			return codec.ErrComponentsPerSample
		}
		s.ComponentsPerSample = int(value)

	case vc5.TagFrameStructure:
		s.Progressive = value&vc5.ImageStructureInterlaced == 0
		s.TopFieldFirst = value&vc5.ImageStructureBottomFieldFirst == 0
		s.FrameInverted = value&vc5.ImageStructureBottomRowFirst != 0

	case vc5.TagBandCoding:
		s.ActiveCodebook = int(value & 0x0F)
		s.DifferenceCoding = value>>4&0x01 != 0
		// The baseline profile allows neither an alternate codebook nor
		// difference coding
		if s.ActiveCodebook != 1 || s.DifferenceCoding {
			return codec.ErrSyntax
		}

	case vc5.TagGroupLength:
		s.GroupLength = int(value)

	case vc5.TagLayerNumber:
		s.LayerNumber = int(value)

	case vc5.TagEnabledParts:
		s.EnabledParts = vc5.EnabledParts(value)

	case vc5.TagVersion:
		major, minor, revision := vc5.UnpackVersion(value)
		s.Version = [3]uint8{major, minor, revision}

	case vc5.TagBitstreamMarker, vc5.TagBandTrailer, vc5.TagZero:
		// Markers and trailers do not carry state parameters

	default:
		// A required tag that is not a known parameter is fatal; an
		// optional segment the decoder does not recognize is ignored
		if !IsOptional(segment.Tag) {
			return codec.ErrInvalidTag
		}
	}

	return nil
}
