package wavelet

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/quant"
)

// Rounding added to the highpass sum before the division by eight.
const rounding = 4

// divideByShift is an arithmetic right shift written out so the rounding
// semantics match the reference filters.
func divideByShift(value int32, shift uint) int32 {
	return value >> shift
}

// FilterHorizontalRow applies the horizontal wavelet filter to a row of
// pixels. The input samples are prescaled with rounding before they enter
// the filter. The lowpass output has the same precision as the input and
// half the width.
func FilterHorizontalRow(input []int16, lowpass, highpass []int16, width, prescale int) {
	prescaleRounding := int32(1<<uint(prescale)) - 1
	shift := uint(prescale)

	scaled := func(column int) int32 {
		return (int32(input[column]) + prescaleRounding) >> shift
	}

	lastInputColumn := width - 2
	if width%2 != 0 {
		lastInputColumn = width - 1
	}

	// Left border
	lowpass[0] = int16((int32(input[0]) + int32(input[1]) + prescaleRounding) >> shift)

	var sum int32
	sum += 5 * scaled(0)
	sum -= 11 * scaled(1)
	sum += 4 * scaled(2)
	sum += 4 * scaled(3)
	sum -= 1 * scaled(4)
	sum -= 1 * scaled(5)
	sum += rounding
	highpass[0] = quant.ClampPixel(divideByShift(sum, 3))

	// Interior columns
	column := 2
	for ; column < lastInputColumn; column += 2 {
		lowpass[column/2] = int16((int32(input[column]) + int32(input[column+1]) + prescaleRounding) >> shift)

		sum = 0
		sum -= scaled(column - 2)
		sum -= scaled(column - 1)
		sum += scaled(column + 2)
		if column+3 < width {
			sum += scaled(column + 3)
		} else {
			// Duplicate the value in the last column
			sum += scaled(column + 2)
		}
		sum += rounding
		sum = divideByShift(sum, 3)
		sum += scaled(column)
		sum -= scaled(column + 1)
		highpass[column/2] = quant.ClampPixel(sum)
	}

	// Right border
	if column+1 < width {
		lowpass[column/2] = int16((int32(input[column]) + int32(input[column+1]) + prescaleRounding) >> shift)
	} else {
		// Duplicate the value in the last column
		lowpass[column/2] = int16((int32(input[column]) + int32(input[column]) + prescaleRounding) >> shift)
	}

	sum = 0
	if column+1 < width {
		sum -= 5 * scaled(column+1)
	} else {
		sum -= 5 * scaled(column)
	}
	sum += 11 * scaled(column)
	sum -= 4 * scaled(column-1)
	sum -= 4 * scaled(column-2)
	sum += 1 * scaled(column-3)
	sum += 1 * scaled(column-4)
	sum += rounding
	highpass[column/2] = quant.ClampPixel(divideByShift(sum, 3))
}

// ForwardWavelet computes one level of the forward spatial transform. The
// input is accessed through the row function so that both a component
// array and the lowpass band of the previous wavelet can feed the filter.
// Each highpass band is quantized as it is produced.
func ForwardWavelet(row func(int) []int16, width, height int, output *Wavelet, prescale, midpointSetting int) error {
	if width < 6 || height < 6 || width%2 != 0 || height%2 != 0 {
		return codec.ErrImageDimensions
	}

	waveletWidth := output.Width

	// Apply the horizontal filter to every input row
	lowpassRows := make([][]int16, height)
	highpassRows := make([][]int16, height)
	for r := 0; r < height; r++ {
		lowpassRows[r] = make([]int16, waveletWidth)
		highpassRows[r] = make([]int16, waveletWidth)
		FilterHorizontalRow(row(r), lowpassRows[r], highpassRows[r], width, prescale)
	}

	// Apply the vertical filter to six-row windows of the horizontal
	// results, producing one output row in each band per pair of input
	// rows
	filterVerticalTopRow(lowpassRows[0:6], highpassRows[0:6], output, 0, midpointSetting)

	lastInputRow := height - 2
	for inputRow := 2; inputRow < lastInputRow; inputRow += 2 {
		filterVerticalMiddleRow(lowpassRows[inputRow-2:inputRow+4], highpassRows[inputRow-2:inputRow+4],
			output, inputRow/2, midpointSetting)
	}

	filterVerticalBottomRow(lowpassRows[height-6:height], highpassRows[height-6:height],
		output, lastInputRow/2, midpointSetting)

	for band := 0; band < output.BandCount; band++ {
		if err := output.MarkBandValid(band); err != nil {
			return err
		}
	}

	return nil
}

// filterVerticalTopRow uses the wavelet formulas for the top border.
func filterVerticalTopRow(lowpass, highpass [][]int16, output *Wavelet, outputRow, midpointSetting int) {
	ll := output.Row(vc5.LLBand, outputRow)
	lh := output.Row(vc5.LHBand, outputRow)
	hl := output.Row(vc5.HLBand, outputRow)
	hh := output.Row(vc5.HHBand, outputRow)

	for column := 0; column < output.Width; column++ {
		// Lowpass vertical filter applied to the lowpass horizontal results
		sum := int32(lowpass[0][column]) + int32(lowpass[1][column])
		ll[column] = quant.ClampPixel(sum)

		// Highpass vertical filter applied to the lowpass horizontal results
		sum = 0
		sum += 5 * int32(lowpass[0][column])
		sum -= 11 * int32(lowpass[1][column])
		sum += 4 * int32(lowpass[2][column])
		sum += 4 * int32(lowpass[3][column])
		sum -= 1 * int32(lowpass[4][column])
		sum -= 1 * int32(lowpass[5][column])
		sum += rounding
		hl[column] = quant.QuantizePixel(divideByShift(sum, 3), output.Quant[vc5.HLBand], midpointSetting)

		// Lowpass vertical filter applied to the highpass horizontal results
		sum = int32(highpass[0][column]) + int32(highpass[1][column])
		lh[column] = quant.QuantizePixel(sum, output.Quant[vc5.LHBand], midpointSetting)

		// Highpass vertical filter applied to the highpass horizontal results
		sum = 0
		sum += 5 * int32(highpass[0][column])
		sum -= 11 * int32(highpass[1][column])
		sum += 4 * int32(highpass[2][column])
		sum += 4 * int32(highpass[3][column])
		sum -= 1 * int32(highpass[4][column])
		sum -= 1 * int32(highpass[5][column])
		sum += rounding
		hh[column] = quant.QuantizePixel(divideByShift(sum, 3), output.Quant[vc5.HHBand], midpointSetting)
	}
}

// filterVerticalMiddleRow uses the wavelet formulas for the middle rows.
// The six-row window is centered on the pair of input rows being reduced.
func filterVerticalMiddleRow(lowpass, highpass [][]int16, output *Wavelet, outputRow, midpointSetting int) {
	ll := output.Row(vc5.LLBand, outputRow)
	lh := output.Row(vc5.LHBand, outputRow)
	hl := output.Row(vc5.HLBand, outputRow)
	hh := output.Row(vc5.HHBand, outputRow)

	for column := 0; column < output.Width; column++ {
		sum := int32(lowpass[2][column]) + int32(lowpass[3][column])
		ll[column] = quant.ClampPixel(sum)

		sum = 0
		sum -= int32(lowpass[0][column])
		sum -= int32(lowpass[1][column])
		sum += int32(lowpass[4][column])
		sum += int32(lowpass[5][column])
		sum += rounding
		sum = divideByShift(sum, 3)
		sum += int32(lowpass[2][column])
		sum -= int32(lowpass[3][column])
		hl[column] = quant.QuantizePixel(sum, output.Quant[vc5.HLBand], midpointSetting)

		sum = int32(highpass[2][column]) + int32(highpass[3][column])
		lh[column] = quant.QuantizePixel(sum, output.Quant[vc5.LHBand], midpointSetting)

		sum = 0
		sum -= int32(highpass[0][column])
		sum -= int32(highpass[1][column])
		sum += int32(highpass[4][column])
		sum += int32(highpass[5][column])
		sum += rounding
		sum = divideByShift(sum, 3)
		sum += int32(highpass[2][column])
		sum -= int32(highpass[3][column])
		hh[column] = quant.QuantizePixel(sum, output.Quant[vc5.HHBand], midpointSetting)
	}
}

// filterVerticalBottomRow uses the wavelet formulas for the bottom border.
func filterVerticalBottomRow(lowpass, highpass [][]int16, output *Wavelet, outputRow, midpointSetting int) {
	ll := output.Row(vc5.LLBand, outputRow)
	lh := output.Row(vc5.LHBand, outputRow)
	hl := output.Row(vc5.HLBand, outputRow)
	hh := output.Row(vc5.HHBand, outputRow)

	for column := 0; column < output.Width; column++ {
		sum := int32(lowpass[4][column]) + int32(lowpass[5][column])
		ll[column] = quant.ClampPixel(sum)

		sum = 0
		sum += 11 * int32(lowpass[4][column])
		sum -= 5 * int32(lowpass[5][column])
		sum -= 4 * int32(lowpass[3][column])
		sum -= 4 * int32(lowpass[2][column])
		sum += 1 * int32(lowpass[1][column])
		sum += 1 * int32(lowpass[0][column])
		sum += rounding
		hl[column] = quant.QuantizePixel(divideByShift(sum, 3), output.Quant[vc5.HLBand], midpointSetting)

		sum = int32(highpass[4][column]) + int32(highpass[5][column])
		lh[column] = quant.QuantizePixel(sum, output.Quant[vc5.LHBand], midpointSetting)

		sum = 0
		sum += 11 * int32(highpass[4][column])
		sum -= 5 * int32(highpass[5][column])
		sum -= 4 * int32(highpass[3][column])
		sum -= 4 * int32(highpass[2][column])
		sum += 1 * int32(highpass[1][column])
		sum += 1 * int32(highpass[0][column])
		sum += rounding
		hh[column] = quant.QuantizePixel(divideByShift(sum, 3), output.Quant[vc5.HHBand], midpointSetting)
	}
}
