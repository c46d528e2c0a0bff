package quant

// The cubic companding curve is f(x) = x + (x^3 / 255^3) * 768, mapping the
// range of coefficient magnitudes from [0, 255] onto [0, 1023]. The encoder
// uses the tabulated inverse to compress a quantized magnitude onto the
// range of codebook entries; the decoder expands a decoded magnitude with
// the forward curve.

// CubicTableLength covers the expanded magnitude range.
const CubicTableLength = 1024

// MaximumCodebookValue is the maximum coefficient magnitude in the codebook.
const MaximumCodebookValue = 255

// cubicTable maps an expanded magnitude to the codebook index that produced
// it. The table is read-only after initialization and safe to share.
var cubicTable [CubicTableLength]int16

func init() {
	computeCubicTable(cubicTable[:], MaximumCodebookValue)
}

// computeCubicTable fills the inverse companding table. For each source
// magnitude the companded magnitude is computed and an inverse entry is
// written at that index; unused entries propagate the last filled value
// forward.
func computeCubicTable(table []int16, maximumValue int16) {
	lastIndex := len(table) - 2

	for i := range table {
		table[i] = 0
	}

	for index := int16(1); index <= maximumValue; index++ {
		magnitude := int(index) + cubicExpansion(int32(index))
		if magnitude > lastIndex {
			magnitude = lastIndex
		}
		table[magnitude] = index
	}

	var lastMagnitude int16
	for index := range table {
		if table[index] != 0 {
			lastMagnitude = table[index]
		} else {
			table[index] = lastMagnitude
		}
	}
}

// cubicExpansion returns the cubic term added to a magnitude by the
// forward companding curve.
func cubicExpansion(magnitude int32) int {
	cubic := float64(magnitude)
	cubic *= float64(magnitude)
	cubic *= float64(magnitude)
	cubic *= 768
	cubic /= 255 * 255 * 255
	return int(cubic)
}

// CompandedValue compresses a quantized coefficient onto the codebook range
// using the tabulated inverse of the cubic curve. The sign is preserved.
func CompandedValue(value int32) int32 {
	magnitude := value
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude >= CubicTableLength {
		magnitude = CubicTableLength - 1
	}

	companded := int32(cubicTable[magnitude])
	if value < 0 {
		return -companded
	}
	return companded
}

// UncompandedValue expands a decoded coefficient by applying the forward
// cubic curve. The sign is preserved.
func UncompandedValue(value int32) int32 {
	magnitude := value
	if magnitude < 0 {
		magnitude = -magnitude
	}

	magnitude += int32(cubicExpansion(magnitude))

	if value < 0 {
		return -magnitude
	}
	return magnitude
}
