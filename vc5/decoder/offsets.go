package decoder

import (
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/syntax"
)

// LowpassChannelOffset returns the offset added to each pixel value when
// decoding the lowpass band. It corrects for rounding errors that occur
// during encoding and depends on the output format since the rounding
// errors are not present at higher output bit depths.
//
// The constants are a conformance requirement and are not derived from
// the transform arithmetic.
func LowpassChannelOffset(state *syntax.State, outputFormat vc5.PixelFormat) int {
	if state.LowpassPrecision != 16 {
		return 0
	}

	groupLength := state.GroupLength

	switch state.BitsPerComponent {
	case 8:
		if groupLength == 2 {
			return 64
		}
		return 32

	case 10:
		// Outputs with 16-bit components (YU64, YR16, V210) use smaller
		// offsets; none of them are implemented here
		if groupLength == 2 {
			return 48
		}
		return 24

	case 12:
		switch outputFormat {
		case vc5.PixelFormatRG48, vc5.PixelFormatB64A:
			// 16-bit output precision hides the rounding errors
			return 0
		case vc5.PixelFormatDPX0:
			return 6
		default:
			return 0
		}
	}

	return 0
}
