package wavelet

import (
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/quant"
)

// InvertHorizontal applies the inverse horizontal wavelet filter to a row
// of lowpass and highpass coefficients, producing an output row that is
// twice as wide. The last odd output sample is dropped when the output
// width is odd.
//
// The descale argument removes scaling applied during encoding: zero keeps
// the final division by two of the synthesis filter, one omits it, and two
// omits it and doubles the result.
func InvertHorizontal(lowpass, highpass, output []int16, inputWidth, outputWidth, descale int) {
	lastColumn := inputWidth - 1

	finish := func(value int32) int16 {
		switch descale {
		case 2:
			value <<= 1
		case 1:
			// The omitted division by two removes one level of scaling
		default:
			value >>= 1
		}
		return quant.ClampPixel(value)
	}

	// Left border
	var even, odd int32

	even += 11 * int32(lowpass[0])
	even -= 4 * int32(lowpass[1])
	even += 1 * int32(lowpass[2])
	even += rounding
	even = divideByShift(even, 3)
	even += int32(highpass[0])

	odd += 5 * int32(lowpass[0])
	odd += 4 * int32(lowpass[1])
	odd -= 1 * int32(lowpass[2])
	odd += rounding
	odd = divideByShift(odd, 3)
	odd -= int32(highpass[0])

	output[0] = finish(even)
	output[1] = finish(odd)

	// Interior columns
	for column := 1; column < lastColumn; column++ {
		even = 0
		odd = 0

		even += int32(lowpass[column-1])
		even -= int32(lowpass[column+1])
		even += rounding
		even >>= 3
		even += int32(lowpass[column])
		even += int32(highpass[column])

		odd -= int32(lowpass[column-1])
		odd += int32(lowpass[column+1])
		odd += rounding
		odd >>= 3
		odd += int32(lowpass[column])
		odd -= int32(highpass[column])

		output[2*column+0] = finish(even)
		output[2*column+1] = finish(odd)
	}

	// Right border
	column := lastColumn

	even = 0
	even += 5 * int32(lowpass[column])
	even += 4 * int32(lowpass[column-1])
	even -= 1 * int32(lowpass[column-2])
	even += rounding
	even = divideByShift(even, 3)
	even += int32(highpass[column])
	output[2*column+0] = finish(even)

	if 2*column+1 < outputWidth {
		odd = 0
		odd += 11 * int32(lowpass[column])
		odd -= 4 * int32(lowpass[column-1])
		odd += 1 * int32(lowpass[column-2])
		odd += rounding
		odd = divideByShift(odd, 3)
		odd -= int32(highpass[column])
		output[2*column+1] = finish(odd)
	}
}

// InvertSpatialQuant dequantizes the highpass bands and applies the
// inverse spatial wavelet filter, computing an output that has twice the
// width and height of the input bands.
//
// The inverse vertical filter is applied column wise to the left band pair
// (LL and HL) and the right band pair (LH and HH), producing two rows of
// horizontal lowpass and highpass coefficients per iteration. A sliding
// window of three dequantized LH rows advances by one row per pair of
// reconstructed output rows. The inverse horizontal filter then produces
// the two output rows.
//
// The output function receives each reconstructed row in order.
func InvertSpatialQuant(input *Wavelet, outputWidth, outputHeight int, descale int, outputRow func(row int) []int16) {
	inputWidth := input.Width
	lastRow := input.Height - 1

	quantLH := input.Quant[vc5.LHBand]
	quantHL := input.Quant[vc5.HLBand]
	quantHH := input.Quant[vc5.HHBand]

	// Rows of horizontal lowpass and highpass coefficients computed by
	// the inverse vertical transform
	evenLowpass := make([]int16, inputWidth)
	evenHighpass := make([]int16, inputWidth)
	oddLowpass := make([]int16, inputWidth)
	oddHighpass := make([]int16, inputWidth)

	// Sliding window of dequantized rows from the LH band and one
	// dequantized row each from the HL and HH bands
	window := [3][]int16{
		make([]int16, inputWidth),
		make([]int16, inputWidth),
		make([]int16, inputWidth),
	}
	highlowLine := make([]int16, inputWidth)
	highhighLine := make([]int16, inputWidth)

	quant.DequantizeBandRow(input.Row(vc5.LHBand, 0), inputWidth, quantLH, window[0])
	quant.DequantizeBandRow(input.Row(vc5.LHBand, 1), inputWidth, quantLH, window[1])
	quant.DequantizeBandRow(input.Row(vc5.LHBand, 2), inputWidth, quantLH, window[2])

	quant.DequantizeBandRow(input.Row(vc5.HLBand, 0), inputWidth, quantHL, highlowLine)
	quant.DequantizeBandRow(input.Row(vc5.HHBand, 0), inputWidth, quantHH, highhighLine)

	// Apply the vertical border filter to the first row
	ll0 := input.Row(vc5.LLBand, 0)
	ll1 := input.Row(vc5.LLBand, 1)
	ll2 := input.Row(vc5.LLBand, 2)

	for column := 0; column < inputWidth; column++ {
		even := 11*int32(ll0[column]) - 4*int32(ll1[column]) + 1*int32(ll2[column]) + rounding
		even = divideByShift(even, 3)
		even += int32(highlowLine[column])
		even >>= 1
		evenLowpass[column] = quant.ClampPixel(even)

		odd := 5*int32(ll0[column]) + 4*int32(ll1[column]) - 1*int32(ll2[column]) + rounding
		odd = divideByShift(odd, 3)
		odd -= int32(highlowLine[column])
		odd >>= 1
		oddLowpass[column] = quant.ClampPixel(odd)

		even = 11*int32(window[0][column]) - 4*int32(window[1][column]) + 1*int32(window[2][column]) + rounding
		even = divideByShift(even, 3)
		even += int32(highhighLine[column])
		even >>= 1
		evenHighpass[column] = quant.ClampPixel(even)

		odd = 5*int32(window[0][column]) + 4*int32(window[1][column]) - 1*int32(window[2][column]) + rounding
		odd = divideByShift(odd, 3)
		odd -= int32(highhighLine[column])
		odd >>= 1
		oddHighpass[column] = quant.ClampPixel(odd)
	}

	InvertHorizontal(evenLowpass, evenHighpass, outputRow(0), inputWidth, outputWidth, descale)
	InvertHorizontal(oddLowpass, oddHighpass, outputRow(1), inputWidth, outputWidth, descale)

	// Process the middle rows using the interior reconstruction filters
	for row := 1; row < lastRow; row++ {
		quant.DequantizeBandRow(input.Row(vc5.HLBand, row), inputWidth, quantHL, highlowLine)
		quant.DequantizeBandRow(input.Row(vc5.HHBand, row), inputWidth, quantHH, highhighLine)

		llAbove := input.Row(vc5.LLBand, row-1)
		llCenter := input.Row(vc5.LLBand, row)
		llBelow := input.Row(vc5.LLBand, row+1)

		for column := 0; column < inputWidth; column++ {
			even := int32(llAbove[column]) - int32(llBelow[column]) + rounding
			even >>= 3
			even += int32(llCenter[column])
			even += int32(highlowLine[column])
			even >>= 1
			evenLowpass[column] = quant.ClampPixel(even)

			odd := int32(llBelow[column]) - int32(llAbove[column]) + rounding
			odd >>= 3
			odd += int32(llCenter[column])
			odd -= int32(highlowLine[column])
			odd >>= 1
			oddLowpass[column] = quant.ClampPixel(odd)

			even = int32(window[0][column]) - int32(window[2][column]) + rounding
			even >>= 3
			even += int32(window[1][column])
			even += int32(highhighLine[column])
			even >>= 1
			evenHighpass[column] = quant.ClampPixel(even)

			odd = int32(window[2][column]) - int32(window[0][column]) + rounding
			odd >>= 3
			odd += int32(window[1][column])
			odd -= int32(highhighLine[column])
			odd >>= 1
			oddHighpass[column] = quant.ClampPixel(odd)
		}

		InvertHorizontal(evenLowpass, evenHighpass, outputRow(2*row), inputWidth, outputWidth, descale)
		InvertHorizontal(oddLowpass, oddHighpass, outputRow(2*row+1), inputWidth, outputWidth, descale)

		if row < lastRow-1 {
			// Advance the sliding window over the LH band by one row
			next := window[0]
			window[0] = window[1]
			window[1] = window[2]
			window[2] = next
			quant.DequantizeBandRow(input.Row(vc5.LHBand, row+2), inputWidth, quantLH, window[2])
		}
	}

	// Apply the vertical border filter to the last row
	quant.DequantizeBandRow(input.Row(vc5.HLBand, lastRow), inputWidth, quantHL, highlowLine)
	quant.DequantizeBandRow(input.Row(vc5.HHBand, lastRow), inputWidth, quantHH, highhighLine)

	llLast := input.Row(vc5.LLBand, lastRow)
	llAbove := input.Row(vc5.LLBand, lastRow-1)
	llHigher := input.Row(vc5.LLBand, lastRow-2)

	for column := 0; column < inputWidth; column++ {
		even := 5*int32(llLast[column]) + 4*int32(llAbove[column]) - 1*int32(llHigher[column]) + rounding
		even = divideByShift(even, 3)
		even += int32(highlowLine[column])
		even >>= 1
		evenLowpass[column] = quant.ClampPixel(even)

		odd := 11*int32(llLast[column]) - 4*int32(llAbove[column]) + 1*int32(llHigher[column]) + rounding
		odd = divideByShift(odd, 3)
		odd -= int32(highlowLine[column])
		odd >>= 1
		oddLowpass[column] = quant.ClampPixel(odd)

		even = 5*int32(window[2][column]) + 4*int32(window[1][column]) - 1*int32(window[0][column]) + rounding
		even = divideByShift(even, 3)
		even += int32(highhighLine[column])
		even >>= 1
		evenHighpass[column] = quant.ClampPixel(even)

		odd = 11*int32(window[2][column]) - 4*int32(window[1][column]) + 1*int32(window[0][column]) + rounding
		odd = divideByShift(odd, 3)
		odd -= int32(highhighLine[column])
		odd >>= 1
		oddHighpass[column] = quant.ClampPixel(odd)
	}

	InvertHorizontal(evenLowpass, evenHighpass, outputRow(2*lastRow), inputWidth, outputWidth, descale)

	// The output may be shorter than twice the height of the input bands
	if 2*lastRow+1 < outputHeight {
		InvertHorizontal(oddLowpass, oddHighpass, outputRow(2*lastRow+1), inputWidth, outputWidth, descale)
	}
}
