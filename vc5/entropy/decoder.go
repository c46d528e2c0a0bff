package entropy

import (
	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
)

// decoderTree is the decoding state machine compiled from a codebook.
// Each state consumes one input bit; a leaf state emits the codebook entry
// for the completed codeword.
type decoderTree struct {
	root *decoderNode
}

type decoderNode struct {
	children [2]*decoderNode
	entry    *Entry
}

// newDecoderTree compiles the codebook into the decoding state machine.
func newDecoderTree(codebook *Codebook) *decoderTree {
	tree := &decoderTree{root: &decoderNode{}}

	for i := range codebook.Entries {
		entry := &codebook.Entries[i]
		node := tree.root
		for position := int(entry.Size) - 1; position >= 0; position-- {
			bit := entry.Bits >> uint(position) & 1
			if node.children[bit] == nil {
				node.children[bit] = &decoderNode{}
			}
			node = node.children[bit]
		}
		node.entry = entry
	}

	return tree
}

// decode reads bits from the bitstream until a complete codeword has been
// recognized and returns its codebook entry.
func (t *decoderTree) decode(stream *bitstream.BitStream) (*Entry, error) {
	node := t.root
	for {
		bit := stream.GetBits(1)
		if err := stream.Err(); err != nil {
			return nil, err
		}
		node = node.children[bit]
		if node == nil {
			return nil, codec.ErrInvalidMarker
		}
		if node.entry != nil {
			return node.entry, nil
		}
	}
}
