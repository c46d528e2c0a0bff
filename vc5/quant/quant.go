// Package quant implements quantization of highpass coefficients with
// midpoint rounding, the matching dequantization, and the cubic companding
// curve that maps coefficient magnitudes onto the codebook range.
package quant

// Pixel range for clamping quantized coefficients.
const (
	pixelMinimum = -32768
	pixelMaximum = 32767
)

// DefaultQuantization is the default table of quantization divisors indexed
// by subband number (Filmscan-1 quality). The lowpass subband is never
// quantized, so entry zero is always one.
var DefaultQuantization = [10]int{1, 24, 24, 12, 24, 24, 12, 96, 96, 144}

// DefaultMidpoint is the midpoint setting used to compute the rounding
// applied before quantization.
const DefaultMidpoint = 2

// ClampPixel clamps a 32-bit intermediate result to the pixel range.
func ClampPixel(value int32) int16 {
	if value < pixelMinimum {
		return pixelMinimum
	}
	if value > pixelMaximum {
		return pixelMaximum
	}
	return int16(value)
}

// Midpoint computes the rounding value added to a coefficient magnitude
// before quantization. The correction argument is a setting that selects
// the midpoint, not the midpoint itself.
func Midpoint(correction, divisor int) int {
	midpoint := 0

	if correction >= 2 && correction < 9 {
		midpoint = divisor / correction

		if correction == 2 && midpoint > 0 {
			midpoint--
		}
	}

	return midpoint
}

// QuantizePixel quantizes a coefficient by the specified divisor using
// midpoint rounding. The division is performed as a multiplication by a
// 16-bit reciprocal, keeping the upper half of the product, exactly as the
// quantizer in the encoder that produced conforming bitstreams.
func QuantizePixel(value int32, divisor, midpointSetting int) int16 {
	if divisor <= 1 {
		return ClampPixel(value)
	}

	midpoint := int32(Midpoint(midpointSetting, divisor))
	multiplier := uint32(1<<16) / uint32(divisor)

	if value >= 0 {
		product := uint32(value+midpoint) * multiplier
		return ClampPixel(int32(product >> 16))
	}

	product := uint32(-value+midpoint) * multiplier
	return ClampPixel(-int32(product >> 16))
}

// DequantizePixel inverts quantization: the companding curve is inverted
// and the magnitude is multiplied by the divisor that was used to compress
// the band. No midpoint is added back since the forward direction absorbed
// the rounding.
func DequantizePixel(value int32, divisor int) int16 {
	value = UncompandedValue(value)

	if value > 0 {
		value = int32(divisor) * value
	} else if value < 0 {
		value = -(int32(divisor) * -value)
	}

	return ClampPixel(value)
}

// DequantizeBandRow dequantizes one row of highpass coefficients.
func DequantizeBandRow(input []int16, width, divisor int, output []int16) {
	for column := 0; column < width; column++ {
		output[column] = DequantizePixel(int32(input[column]), divisor)
	}
}
