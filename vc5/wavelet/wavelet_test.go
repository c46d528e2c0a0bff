package wavelet

import (
	"testing"

	"github.com/cocosip/go-vc5-codec/vc5"
)

// makeImage fills a component-sized buffer with a test pattern.
func makeImage(width, height int, pattern string) [][]int16 {
	rows := make([][]int16, height)
	for y := range rows {
		rows[y] = make([]int16, width)
		for x := range rows[y] {
			switch pattern {
			case "solid":
				rows[y][x] = 128
			case "ramp":
				rows[y][x] = int16((x + y) >> 2)
			case "slope":
				rows[y][x] = int16(x/4 + y/8 + 10)
			}
		}
	}
	return rows
}

// identityWavelet allocates a wavelet with all quantization divisors one.
func identityWavelet(width, height int) *Wavelet {
	w := NewWavelet(width, height)
	for band := range w.Quant {
		w.Quant[band] = 1
	}
	return w
}

// TestForwardInverseLevel tests perfect reconstruction of a single
// wavelet level for smooth images with identity quantization.
func TestForwardInverseLevel(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		pattern string
	}{
		{"32x32 solid", 32, 32, "solid"},
		{"32x32 ramp", 32, 32, "ramp"},
		{"64x32 slope", 64, 32, "slope"},
		{"24x24 ramp", 24, 24, "ramp"},
		{"48x64 slope", 48, 64, "slope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image := makeImage(tt.width, tt.height, tt.pattern)

			w := identityWavelet(tt.width/2, tt.height/2)
			input := func(row int) []int16 { return image[row] }
			if err := ForwardWavelet(input, tt.width, tt.height, w, 0, 0); err != nil {
				t.Fatalf("ForwardWavelet failed: %v", err)
			}
			if !w.AllBandsValid() {
				t.Fatal("forward transform should mark all bands valid")
			}

			output := make([][]int16, tt.height)
			for row := range output {
				output[row] = make([]int16, tt.width)
			}
			InvertSpatialQuant(w, tt.width, tt.height, 0, func(row int) []int16 {
				return output[row]
			})

			for y := 0; y < tt.height; y++ {
				for x := 0; x < tt.width; x++ {
					if output[y][x] != image[y][x] {
						t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, output[y][x], image[y][x])
					}
				}
			}
		})
	}
}

// TestForwardInverseCascade tests perfect reconstruction through the full
// three-level cascade without prescaling.
func TestForwardInverseCascade(t *testing.T) {
	const width, height = 64, 48

	image := makeImage(width, height, "ramp")

	transform := NewTransform(width, height)
	transform.SetScale()
	var quantTable [vc5.MaxSubbandCount]int
	for i := range quantTable {
		quantTable[i] = 1
	}
	transform.SetQuantization(quantTable)

	input := func(row int) []int16 { return image[row] }
	w, h := width, height
	for level := 0; level < vc5.MaxWaveletCount; level++ {
		output := transform.Wavelets[level]
		if err := ForwardWavelet(input, w, h, output, 0, 0); err != nil {
			t.Fatalf("level %d forward failed: %v", level, err)
		}
		input = func(row int) []int16 { return output.Row(vc5.LLBand, row) }
		w, h = output.Width, output.Height
	}

	// Reconstruct from the top of the pyramid down
	for level := vc5.MaxWaveletCount - 1; level > 0; level-- {
		src := transform.Wavelets[level]
		dst := transform.Wavelets[level-1]
		InvertSpatialQuant(src, dst.Width, dst.Height, 0, func(row int) []int16 {
			return dst.Row(vc5.LLBand, row)
		})
	}

	output := make([][]int16, height)
	for row := range output {
		output[row] = make([]int16, width)
	}
	InvertSpatialQuant(transform.Wavelets[0], width, height, 0, func(row int) []int16 {
		return output[row]
	})

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if output[y][x] != image[y][x] {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, output[y][x], image[y][x])
			}
		}
	}
}

// TestPrescaleRoundTrip tests that prescaling bounds the reconstruction
// error rather than destroying the image.
func TestPrescaleRoundTrip(t *testing.T) {
	const width, height = 32, 32
	const prescale = 2

	image := makeImage(width, height, "ramp")
	for y := range image {
		for x := range image[y] {
			image[y][x] *= 16 // use some of the extended range
		}
	}

	w := identityWavelet(width/2, height/2)
	input := func(row int) []int16 { return image[row] }
	if err := ForwardWavelet(input, width, height, w, prescale, 0); err != nil {
		t.Fatal(err)
	}

	output := make([][]int16, height)
	for row := range output {
		output[row] = make([]int16, width)
	}
	InvertSpatialQuant(w, width, height, prescale, func(row int) []int16 {
		return output[row]
	})

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			diff := int(output[y][x]) - int(image[y][x])
			if diff < 0 {
				diff = -diff
			}
			if diff > 1<<prescale {
				t.Fatalf("pixel (%d,%d) error %d exceeds prescale bound", x, y, diff)
			}
		}
	}
}

// TestTransformScale tests the per-band scale bookkeeping: the scale of a
// band equals two raised to the number of lowpass filter applications.
func TestTransformScale(t *testing.T) {
	transform := NewTransform(64, 64)
	transform.SetScale()

	want := [vc5.MaxWaveletCount][vc5.MaxBandCount]int{
		{4, 2, 2, 1},
		{16, 8, 8, 4},
		{64, 32, 32, 16},
	}

	for level := 0; level < vc5.MaxWaveletCount; level++ {
		for band := 0; band < vc5.MaxBandCount; band++ {
			if got := transform.Wavelets[level].Scale[band]; got != want[level][band] {
				t.Errorf("level %d band %d scale = %d, want %d", level, band, got, want[level][band])
			}
		}
	}
}

// TestValidBandMask tests the valid band bookkeeping.
func TestValidBandMask(t *testing.T) {
	w := NewWavelet(8, 8)

	if w.AllBandsValid() {
		t.Error("new wavelet should have no valid bands")
	}
	for band := 0; band < vc5.MaxBandCount; band++ {
		if err := w.MarkBandValid(band); err != nil {
			t.Fatal(err)
		}
	}
	if !w.AllBandsValid() {
		t.Error("all bands should be valid")
	}
	if err := w.MarkBandValid(4); err == nil {
		t.Error("band index out of range should fail")
	}
}

// TestTransformDimensions tests the halving chain of band dimensions.
func TestTransformDimensions(t *testing.T) {
	transform := NewTransform(1920, 1080)

	wants := [vc5.MaxWaveletCount][2]int{{960, 540}, {480, 270}, {240, 135}}
	for level, want := range wants {
		w := transform.Wavelets[level]
		if w.Width != want[0] || w.Height != want[1] {
			t.Errorf("level %d = %dx%d, want %dx%d", level, w.Width, w.Height, want[0], want[1])
		}
	}
}

// TestSetQuantization tests distribution of the subband quantization
// vector over the wavelet bands.
func TestSetQuantization(t *testing.T) {
	transform := NewTransform(64, 64)
	table := [vc5.MaxSubbandCount]int{1, 24, 24, 12, 24, 24, 12, 96, 96, 144}
	transform.SetQuantization(table)

	for subband := 0; subband < vc5.MaxSubbandCount; subband++ {
		w := transform.Wavelets[vc5.SubbandWavelet(subband)]
		band := vc5.SubbandBand(subband)
		if w.Quant[band] != table[subband] {
			t.Errorf("subband %d quant = %d, want %d", subband, w.Quant[band], table[subband])
		}
	}

	// Intermediate lowpass bands are never quantized
	if transform.Wavelets[0].Quant[vc5.LLBand] != 1 || transform.Wavelets[1].Quant[vc5.LLBand] != 1 {
		t.Error("intermediate lowpass bands must have divisor one")
	}
}

// TestPrescaleDefaults tests the default prescale bookkeeping.
func TestPrescaleDefaults(t *testing.T) {
	transform := NewTransform(64, 64)

	transform.SetPrescale(12)
	if !transform.IsPrescaleDefault(12) {
		t.Error("default table should compare equal")
	}
	transform.Prescale[1] = 3
	if transform.IsPrescaleDefault(12) {
		t.Error("modified table should not compare equal")
	}
}
