// Package wavelet implements the wavelet data structures and the forward
// and inverse spatial transforms. A wavelet is a fixed four-band container
// for one transform level; a transform is the vector of wavelets for one
// channel. All filters are the same three-tap analysis/synthesis pair with
// special formulas at the borders; divisions are implemented as right
// arithmetic shifts with explicit rounding constants.
package wavelet

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
)

// Wavelet is a four-band container (LL, LH, HL, HH) for one transform
// level. Each band is a rectangular array of 16-bit signed coefficients
// stored row major with a shared pitch equal to the band width.
type Wavelet struct {
	Width  int
	Height int

	// Data holds the coefficients of each band.
	Data [vc5.MaxBandCount][]int16

	// Scale records how many bits of headroom the forward transform has
	// accumulated in each band.
	Scale [vc5.MaxBandCount]int

	// Quant is the quantization divisor applied to each band.
	Quant [vc5.MaxBandCount]int

	// ValidBandMask records which bands have been populated. All bands
	// must be valid before the wavelet is consumed by the next stage.
	ValidBandMask uint32

	BandCount int
}

// NewWavelet allocates a wavelet with the specified band dimensions.
func NewWavelet(width, height int) *Wavelet {
	w := &Wavelet{
		Width:     width,
		Height:    height,
		BandCount: vc5.MaxBandCount,
	}
	for band := range w.Data {
		w.Data[band] = make([]int16, width*height)
	}
	return w
}

// Row returns the coefficients of one row of the specified band.
func (w *Wavelet) Row(band, row int) []int16 {
	start := row * w.Width
	return w.Data[band][start : start+w.Width]
}

// BandValidMask returns the mask bit for the specified band.
func BandValidMask(band int) uint32 {
	return 1 << uint(band)
}

// MarkBandValid sets the bit for the specified band in the valid band mask.
func (w *Wavelet) MarkBandValid(band int) error {
	if band < 0 || band >= vc5.MaxBandCount {
		return codec.ErrInvalidBand
	}
	w.ValidBandMask |= BandValidMask(band)
	return nil
}

// AllBandsValid reports whether every band in the wavelet has been
// populated.
func (w *Wavelet) AllBandsValid() bool {
	return w.ValidBandMask == (1<<uint(w.BandCount))-1
}

// Transform is the vector of wavelets for one channel. Level zero takes
// the component array as input; each subsequent level takes the lowpass
// band of the previous level.
type Transform struct {
	Wavelets [vc5.MaxWaveletCount]*Wavelet

	// Prescale is the right shift applied to the input of each wavelet
	// level to prevent overflow.
	Prescale [vc5.MaxPrescaleCount]uint8
}

// NewTransform allocates the wavelets for a channel with the specified
// dimensions. The band dimensions are halved at each level, rounding up.
func NewTransform(width, height int) *Transform {
	t := &Transform{}
	for level := 0; level < vc5.MaxWaveletCount; level++ {
		width = (width + 1) / 2
		height = (height + 1) / 2
		t.Wavelets[level] = NewWavelet(width, height)
	}
	return t
}

// SetScale computes the amount by which the input pixels are scaled as
// each band is computed. The horizontal or vertical lowpass filter scales
// the lowpass values by one bit; the highpass values are not scaled.
func (t *Transform) SetScale() {
	const lowpassArea = 2

	// The first wavelet includes the scaling from the frame transform
	lowpassScale := lowpassArea
	highpassScale := 1

	first := t.Wavelets[0]
	first.Scale[vc5.LLBand] = lowpassArea * lowpassScale
	first.Scale[vc5.LHBand] = lowpassScale
	first.Scale[vc5.HLBand] = lowpassArea * highpassScale
	first.Scale[vc5.HHBand] = highpassScale

	previous := first
	for level := 1; level < vc5.MaxWaveletCount; level++ {
		spatial := t.Wavelets[level]

		// The lowpass band is the input to the spatial transform
		lowpassScale = previous.Scale[vc5.LLBand]

		spatial.Scale[vc5.LLBand] = lowpassArea * lowpassArea * lowpassScale
		spatial.Scale[vc5.LHBand] = lowpassArea * lowpassScale
		spatial.Scale[vc5.HLBand] = lowpassArea * lowpassScale
		spatial.Scale[vc5.HHBand] = lowpassScale

		previous = spatial
	}
}

// SetPrescale installs the default prescale table for the specified
// encoded precision.
func (t *Transform) SetPrescale(precision int) {
	t.Prescale = vc5.DefaultPrescale(precision)
}

// IsPrescaleDefault reports whether the prescale table equals the default
// table for the specified precision, in which case the prescale segment
// does not have to be encoded into the bitstream.
func (t *Transform) IsPrescaleDefault(precision int) bool {
	return t.Prescale == vc5.DefaultPrescale(precision)
}

// SetQuantization distributes the subband quantization vector over the
// wavelet bands.
func (t *Transform) SetQuantization(table [vc5.MaxSubbandCount]int) {
	for subband := 0; subband < vc5.MaxSubbandCount; subband++ {
		wavelet := t.Wavelets[vc5.SubbandWavelet(subband)]
		wavelet.Quant[vc5.SubbandBand(subband)] = table[subband]
	}
	// The lowpass bands of the lower wavelets are intermediate results
	// that are never quantized
	t.Wavelets[0].Quant[vc5.LLBand] = 1
	t.Wavelets[1].Quant[vc5.LLBand] = 1
}
