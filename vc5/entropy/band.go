package entropy

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
	"github.com/cocosip/go-vc5-codec/vc5/quant"
	"github.com/cocosip/go-vc5-codec/vc5/syntax"
)

// PutValue writes the codeword for a nonzero signed coefficient followed
// by the sign bit.
func (cs *CodeSet) PutValue(stream *bitstream.BitStream, value int32) error {
	sign := uint32(positiveCode)
	magnitude := value
	if value < 0 {
		sign = negativeCode
		magnitude = -magnitude
	}

	if magnitude >= int32(len(cs.Mags.codes)) {
		magnitude = int32(len(cs.Mags.codes)) - 1
	}
	code := cs.Mags.codes[magnitude]

	// Append the sign bit to the magnitude codeword
	return stream.PutBits(code.bits<<signCodeSize|sign, code.size+signCodeSize)
}

// PutZeros writes run-length codewords until the specified number of zeros
// has been written to the bitstream.
func (cs *CodeSet) PutZeros(stream *bitstream.BitStream, count int) error {
	for count > 0 {
		index := count
		if index >= len(cs.Runs.codes) {
			index = len(cs.Runs.codes) - 1
		}
		code := cs.Runs.codes[index]
		if err := stream.PutBits(code.bits, code.size); err != nil {
			return err
		}
		count -= code.count
	}
	return nil
}

// PutSpecial writes the codeword for a special marker.
func (cs *CodeSet) PutSpecial(stream *bitstream.BitStream, marker int32) error {
	entry := cs.Codebook.findSpecial(marker)
	if entry == nil {
		return codec.ErrInvalidMarker
	}
	return stream.PutBits(entry.Bits, entry.Size)
}

// EncodeBand run/value codes a highpass band flattened in row-major order.
// The band is terminated by the band-end marker, segment padding, and the
// band-end trailer segment.
func (cs *CodeSet) EncodeBand(stream *bitstream.BitStream, band []int16) error {
	run := 0

	for _, coefficient := range band {
		if coefficient == 0 {
			run++
			continue
		}
		if run > 0 {
			if err := cs.PutZeros(stream, run); err != nil {
				return err
			}
			run = 0
		}
		if err := cs.PutValue(stream, int32(coefficient)); err != nil {
			return err
		}
	}

	if run > 0 {
		if err := cs.PutZeros(stream, run); err != nil {
			return err
		}
	}

	if err := cs.PutSpecial(stream, MarkerBandEnd); err != nil {
		return err
	}
	if err := stream.PadSegment(); err != nil {
		return err
	}
	return syntax.PutTagValueOptional(stream, vc5.TagBandTrailer, 0)
}

// DecodeBand decodes an entropy-coded highpass band into the supplied
// coefficient buffer. After the last coefficient the band-end marker must
// follow, then segment alignment, then the band-end trailer segment.
func (cs *CodeSet) DecodeBand(stream *bitstream.BitStream, band []int16) error {
	filled := 0

	for filled < len(band) {
		entry, err := cs.decoder.decode(stream)
		if err != nil {
			return err
		}

		switch {
		case entry.Count == 0:
			// A special marker before the end of the band is an error
			return codec.ErrBandEndMarker

		case entry.Value == 0:
			// A run of zeros; the buffer was cleared by the caller
			count := entry.Count
			if count > len(band)-filled {
				count = len(band) - filled
			}
			filled += count

		default:
			sign := stream.GetBits(signCodeSize)
			if err := stream.Err(); err != nil {
				return err
			}
			value := entry.Value
			if sign == negativeCode {
				value = -value
			}
			band[filled] = int16(value)
			filled++
		}
	}

	entry, err := cs.decoder.decode(stream)
	if err != nil {
		return err
	}
	if entry.Count != 0 || entry.Value != MarkerBandEnd {
		return codec.ErrBandEndMarker
	}

	stream.AlignSegment()
	if err := stream.Err(); err != nil {
		return err
	}

	segment := syntax.GetSegment(stream)
	if err := stream.Err(); err != nil {
		return err
	}
	if syntax.RequiredTag(segment.Tag) != int16(vc5.TagBandTrailer) {
		return codec.ErrBandEndTrailer
	}

	return nil
}

// EncodeLowpassBand writes the lowpass band as raw fixed-width fields in
// row-major order. The caller must align the bitstream afterwards.
func EncodeLowpassBand(stream *bitstream.BitStream, band []int16, precision int) error {
	for _, coefficient := range band {
		if err := stream.PutBits(uint32(coefficient)&bitstream.Mask(uint(precision)), uint(precision)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeLowpassBand reads the raw lowpass band and adds the channel offset
// to each coefficient.
func DecodeLowpassBand(stream *bitstream.BitStream, band []int16, precision, offset int) error {
	for i := range band {
		value := int32(stream.GetBits(uint(precision))) + int32(offset)
		band[i] = quant.ClampPixel(value)
	}
	return stream.Err()
}
