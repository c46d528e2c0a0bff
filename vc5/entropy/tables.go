package entropy

import "github.com/cocosip/go-vc5-codec/vc5/quant"

// codeword is a bit pattern with its length, the unit stored in the
// encoding tables.
type codeword struct {
	bits uint32
	size uint
}

// MagsTable maps a coefficient magnitude to the codeword that encodes it.
// When the code-set uses cubic companding, the companding is folded into
// the table so that band encoding is a single lookup.
type MagsTable struct {
	codes []codeword
}

// RunsTable maps a run length to the best codeword that covers most of the
// run and the number of zeros the codeword accounts for.
type RunsTable struct {
	codes []runCode
}

type runCode struct {
	bits  uint32
	size  uint
	count int
}

// CodeSet bundles a codebook with the encoding tables computed from it.
// A code set is read-only after initialization and safe to share.
type CodeSet struct {
	Codebook *Codebook
	Mags     *MagsTable
	Runs     *RunsTable
	decoder  *decoderTree
}

// CodeSet17 is the code set for the baseline profile.
var CodeSet17 = NewCodeSet(Codebook17)

// NewCodeSet computes the encoding tables and the decoding tree for the
// specified codebook.
func NewCodeSet(codebook *Codebook) *CodeSet {
	return &CodeSet{
		Codebook: codebook,
		Mags:     fillMagnitudeEncodingTable(codebook),
		Runs:     fillRunLengthEncodingTable(codebook),
		decoder:  newDecoderTree(codebook),
	}
}

// fillMagnitudeEncodingTable computes the table of codewords indexed by
// coefficient magnitude, saturated at the expanded range of the codebook.
func fillMagnitudeEncodingTable(codebook *Codebook) *MagsTable {
	table := &MagsTable{codes: make([]codeword, quant.CubicTableLength)}

	for magnitude := range table.codes {
		index := int32(magnitude)
		if codebook.CubicCompanding {
			index = quant.CompandedValue(index)
		}
		if index > MaximumMagnitude {
			index = MaximumMagnitude
		}
		entry := codebook.findMagnitude(index)
		if entry == nil {
			// Magnitude zero is run-length coded and never looked up
			continue
		}
		table.codes[magnitude] = codeword{bits: entry.Bits, size: entry.Size}
	}

	return table
}

// fillRunLengthEncodingTable computes the table of run-length codewords.
// Entry r holds the codeword for the longest run in the codebook that does
// not exceed r and the number of zeros it covers.
func fillRunLengthEncodingTable(codebook *Codebook) *RunsTable {
	longest := 1
	for i := range codebook.Entries {
		if entry := &codebook.Entries[i]; entry.Value == 0 && entry.Count > longest {
			longest = entry.Count
		}
	}

	table := &RunsTable{codes: make([]runCode, longest+1)}

	for i := range codebook.Entries {
		entry := &codebook.Entries[i]
		if entry.Value != 0 || entry.Count == 0 {
			continue
		}
		for length := entry.Count; length <= longest; length++ {
			if entry.Count > table.codes[length].count {
				table.codes[length] = runCode{bits: entry.Bits, size: entry.Size, count: entry.Count}
			}
		}
	}

	return table
}
