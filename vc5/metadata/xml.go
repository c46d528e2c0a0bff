package metadata

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cocosip/go-vc5-codec/codec"
)

// Namespace of the metadata XML representation.
const xmlNamespace = "https://www.vc5codec.org/xml/metadata"

// Chunk is a metadata chunk holding a tree of tuples.
type Chunk struct {
	// Tag is ChunkSmall, or ChunkLarge in the high byte for a large chunk.
	Tag uint16

	Tuples []*Tuple
}

// DumpXML writes the XML representation of the metadata chunks.
func DumpXML(w io.Writer, chunks []*Chunk) error {
	if _, err := fmt.Fprintf(w, "<metadata xmlns=%q>\n", xmlNamespace); err != nil {
		return err
	}

	for _, chunk := range chunks {
		size := uint32(0)
		for _, tuple := range chunk.Tuples {
			size += tuple.WireSize()
		}
		if _, err := fmt.Fprintf(w, "  <chunk tag=\"0x%04x\" size=\"%d\">\n", chunk.Tag, size/4); err != nil {
			return err
		}
		for _, tuple := range chunk.Tuples {
			if err := dumpTuple(w, tuple, 2); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  </chunk>\n"); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "</metadata>\n")
	return err
}

// dumpTuple writes one tuple element with its attributes and either the
// value or the nested tuples.
func dumpTuple(w io.Writer, tuple *Tuple, level int) error {
	indent := strings.Repeat("  ", level)

	var attributes strings.Builder
	fmt.Fprintf(&attributes, " tag=%q type=%q", tuple.Tag.String(), string(PrintableType(tuple.Type)))

	if len(tuple.Children) > 0 {
		fmt.Fprintf(&attributes, " size=\"%d\"", tuple.NestedSize())
		if _, err := fmt.Fprintf(w, "%s<tuple%s>\n", indent, attributes.String()); err != nil {
			return err
		}
		for _, child := range tuple.Children {
			if err := dumpTuple(w, child, level+1); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s</tuple>\n", indent)
		return err
	}

	fmt.Fprintf(&attributes, " size=\"%d\"", tuple.Size)
	if HasRepeatCount(tuple.Type) {
		fmt.Fprintf(&attributes, " count=\"%d\"", tuple.Count)
	}
	fmt.Fprintf(&attributes, " padding=\"%d\"", tuple.Padding())

	value, err := FormatValue(tuple)
	if err != nil {
		return err
	}

	switch tupleEncoding(tuple) {
	case encodingElementBase64, encodingElementText:
		var escaped strings.Builder
		if err := xml.EscapeText(&escaped, []byte(value)); err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s<tuple%s>%s</tuple>\n", indent, attributes.String(), escaped.String())
		return err

	case encodingElementCDATA:
		_, err = fmt.Fprintf(w, "%s<tuple%s><![CDATA[%s]]></tuple>\n", indent, attributes.String(), value)
		return err

	default:
		var escaped strings.Builder
		if err := xml.EscapeText(&escaped, []byte(value)); err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s<tuple%s value=\"%s\"/>\n", indent, attributes.String(), escaped.String())
		return err
	}
}

// ParseXML reads the XML representation of metadata and rebuilds the
// chunks and their tuple trees. The parser is stream driven: tuple
// elements open on start tags, accumulate character data, and are
// finished by the tag-specific text processor on the end tag.
func ParseXML(r io.Reader) ([]*Chunk, error) {
	decoder := xml.NewDecoder(r)

	var chunks []*Chunk
	var currentChunk *Chunk

	type openTuple struct {
		tuple *Tuple
		text  strings.Builder
		value string
		// hasValue records that the value attribute was present
		hasValue bool
	}
	var stack []*openTuple

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(codec.ErrSyntax, err.Error())
		}

		switch element := token.(type) {
		case xml.StartElement:
			switch element.Name.Local {
			case "metadata":
				// The root element carries only the namespace

			case "chunk":
				currentChunk = &Chunk{Tag: ChunkSmall}
				for _, attr := range element.Attr {
					if attr.Name.Local == "tag" {
						tag, err := strconv.ParseUint(strings.TrimPrefix(attr.Value, "0x"), 16, 16)
						if err != nil {
							return nil, errors.Wrap(codec.ErrSyntax, "invalid chunk tag")
						}
						currentChunk.Tag = uint16(tag)
					}
				}
				chunks = append(chunks, currentChunk)

			case "tuple":
				if len(stack) >= maxNestingDepth {
					return nil, codec.ErrSyntax
				}
				open := &openTuple{tuple: &Tuple{}}
				for _, attr := range element.Attr {
					switch attr.Name.Local {
					case "tag":
						if len(attr.Value) != 4 {
							return nil, errors.Wrap(codec.ErrSyntax, "tuple tag must have four characters")
						}
						open.tuple.Tag = Tag(attr.Value)
					case "type":
						tupleType, err := ParseType(attr.Value)
						if err != nil {
							return nil, err
						}
						open.tuple.Type = tupleType
					case "size":
						size, err := strconv.ParseUint(attr.Value, 10, 24)
						if err != nil {
							return nil, errors.Wrap(codec.ErrSyntax, "invalid tuple size")
						}
						open.tuple.Size = uint32(size)
					case "count":
						count, err := strconv.ParseUint(attr.Value, 10, 16)
						if err != nil {
							return nil, errors.Wrap(codec.ErrSyntax, "invalid tuple count")
						}
						open.tuple.Count = uint16(count)
					case "value":
						open.value = attr.Value
						open.hasValue = true
					case "padding":
						// The padding is recomputed from the payload size
					}
				}
				stack = append(stack, open)

			default:
				return nil, errors.Wrapf(codec.ErrSyntax, "unexpected element %q", element.Name.Local)
			}

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(element)
			}

		case xml.EndElement:
			if element.Name.Local != "tuple" {
				continue
			}
			if len(stack) == 0 {
				return nil, codec.ErrSyntax
			}

			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			tuple := open.tuple

			if len(tuple.Children) == 0 {
				text := open.value
				if !open.hasValue {
					text = open.text.String()
					if tupleEncoding(tuple) == encodingAttribute {
						text = strings.TrimSpace(text)
					}
				}
				if text != "" || tuple.PayloadSize() > 0 {
					if err := ParseValue(tuple, text); err != nil {
						return nil, err
					}
				}
				if err := finishTupleHeader(tuple); err != nil {
					return nil, err
				}
			}

			if len(stack) > 0 {
				parent := stack[len(stack)-1].tuple
				parent.Children = append(parent.Children, tuple)
			} else {
				if currentChunk == nil {
					return nil, codec.ErrSyntax
				}
				currentChunk.Tuples = append(currentChunk.Tuples, tuple)
			}
		}
	}

	return chunks, nil
}

// finishTupleHeader adjusts the size and count of the tuple header to
// match the parsed payload.
func finishTupleHeader(tuple *Tuple) error {
	payloadSize := uint32(len(tuple.Payload))

	if HasRepeatCount(tuple.Type) {
		if payloadSize == 0 {
			// An empty tuple has zero size, zero count, and no padding
			tuple.Size = 0
			tuple.Count = 0
			return nil
		}
		elementSize := ElementSize(tuple.Type)
		if tuple.Size == 0 {
			tuple.Size = elementSize
		}
		if tuple.Size == 0 {
			return codec.ErrSyntax
		}
		elements := payloadSize / tuple.Size
		if elements*tuple.Size != payloadSize {
			return errors.Wrap(codec.ErrSyntax, "payload is not a whole number of elements")
		}
		if elements > 1 || tuple.Count > 0 {
			tuple.Count = uint16(elements)
		}
		return nil
	}

	tuple.Size = payloadSize
	return nil
}
