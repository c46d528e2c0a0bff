package metadata

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cocosip/go-vc5-codec/codec"
)

// valueEncoding selects how a tuple value is represented in XML.
type valueEncoding int

const (
	// encodingAttribute formats the value as text in the value attribute.
	encodingAttribute valueEncoding = iota

	// encodingAttributeBase64 holds a binary blob as base64 in the value
	// attribute.
	encodingAttributeBase64

	// encodingElementBase64 holds a binary blob as base64 in the element
	// text.
	encodingElementBase64

	// encodingElementText passes the element text through unmodified.
	encodingElementText

	// encodingElementCDATA passes the element text through in a CDATA
	// section.
	encodingElementCDATA
)

// RGBALayoutSize is the size of the RGBALayout structure carried by the
// pixel format tuple (SMPTE ST 377-1, section G.2.40).
const RGBALayoutSize = 16

// Tags that require bespoke value encodings.
var specialTagEncoding = map[FourCC]valueEncoding{
	Tag("PFMT"): encodingAttributeBase64,
	Tag("ICCP"): encodingAttributeBase64,
	Tag("CVTD"): encodingAttributeBase64,
	Tag("VEND"): encodingAttributeBase64,
	Tag("DPXh"): encodingElementBase64,
	Tag("MXFd"): encodingElementBase64,
	Tag("ACEh"): encodingElementBase64,
	Tag("XMPd"): encodingElementCDATA,
	Tag("ALEd"): encodingElementText,
}

// tupleEncoding returns the XML representation of the tuple value.
func tupleEncoding(tuple *Tuple) valueEncoding {
	if encoding, ok := specialTagEncoding[tuple.Tag]; ok {
		return encoding
	}
	return encodingAttribute
}

// FormatValue converts a tuple payload to its text representation.
func FormatValue(tuple *Tuple) (string, error) {
	switch tupleEncoding(tuple) {
	case encodingAttributeBase64, encodingElementBase64:
		return base64.StdEncoding.EncodeToString(tuple.Payload), nil
	case encodingElementText, encodingElementCDATA:
		return string(tuple.Payload), nil
	}

	switch tuple.Type {
	case 'c':
		return string(tuple.Payload), nil

	case 'F':
		return formatFourCCs(tuple.Payload), nil

	case 'G', 'U':
		return formatHexVector(tuple.Payload, int(ElementSize(tuple.Type))), nil

	case 'b', 'B', 's', 'S', 'l', 'L', 'j', 'J':
		return formatIntegerVector(tuple)

	case 'f', 'd':
		return formatFloatVector(tuple)

	default:
		// Types without a text representation are carried as base64
		return base64.StdEncoding.EncodeToString(tuple.Payload), nil
	}
}

// ParseValue converts the text representation of a value into the wire
// payload for the tuple header.
func ParseValue(tuple *Tuple, text string) error {
	switch tupleEncoding(tuple) {
	case encodingAttributeBase64, encodingElementBase64:
		payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return errors.Wrap(codec.ErrSyntax, "invalid base64 value")
		}
		if tuple.Tag == Tag("PFMT") && len(payload) != RGBALayoutSize {
			return errors.Wrap(codec.ErrSyntax, "pixel format layout must be 16 bytes")
		}
		tuple.Payload = payload
		return nil

	case encodingElementText, encodingElementCDATA:
		tuple.Payload = []byte(text)
		return nil
	}

	switch tuple.Type {
	case 'c':
		tuple.Payload = []byte(text)
		return nil

	case 'F':
		return parseFourCCs(tuple, text)

	case 'G', 'U':
		return parseHexVector(tuple, text)

	case 'b', 'B', 's', 'S', 'l', 'L', 'j', 'J':
		return parseIntegerVector(tuple, text)

	case 'f', 'd':
		return parseFloatVector(tuple, text)

	default:
		payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return errors.Wrap(codec.ErrSyntax, "invalid base64 value")
		}
		tuple.Payload = payload
		return nil
	}
}

// elementCount returns the number of scalar elements in the payload.
func elementCount(tuple *Tuple) int {
	elementSize := ElementSize(tuple.Type)
	if elementSize == 0 {
		return 0
	}
	return int(tuple.PayloadSize() / elementSize)
}

func formatFourCCs(payload []byte) string {
	var codes []string
	for offset := 0; offset+4 <= len(payload); offset += 4 {
		codes = append(codes, string(payload[offset:offset+4]))
	}
	return strings.Join(codes, " ")
}

func parseFourCCs(tuple *Tuple, text string) error {
	fields := strings.Fields(text)
	payload := make([]byte, 0, 4*len(fields))
	for _, field := range fields {
		if len(field) != 4 {
			return errors.Wrap(codec.ErrSyntax, "four character code must have four characters")
		}
		payload = append(payload, field...)
	}
	tuple.Payload = payload
	return nil
}

func formatHexVector(payload []byte, elementSize int) string {
	var elements []string
	for offset := 0; offset+elementSize <= len(payload); offset += elementSize {
		elements = append(elements, hex.EncodeToString(payload[offset:offset+elementSize]))
	}
	return strings.Join(elements, " ")
}

func parseHexVector(tuple *Tuple, text string) error {
	elementSize := int(ElementSize(tuple.Type))
	fields := strings.Fields(text)
	payload := make([]byte, 0, elementSize*len(fields))

	for _, field := range fields {
		// Tolerate separators in UUID strings
		cleaned := strings.NewReplacer("-", "", "0x", "", ".", "").Replace(field)
		element, err := hex.DecodeString(cleaned)
		if err != nil || len(element) != elementSize {
			return errors.Wrap(codec.ErrSyntax, "invalid hexadecimal value")
		}
		payload = append(payload, element...)
	}

	tuple.Payload = payload
	return nil
}

func formatIntegerVector(tuple *Tuple) (string, error) {
	elementSize := int(ElementSize(tuple.Type))
	signed := tuple.Type == 'b' || tuple.Type == 's' || tuple.Type == 'l' || tuple.Type == 'j'

	var elements []string
	payload := tuple.Payload
	for offset := 0; offset+elementSize <= len(payload); offset += elementSize {
		raw := readBigEndian(payload[offset : offset+elementSize])
		if signed {
			elements = append(elements, strconv.FormatInt(signExtend(raw, elementSize), 10))
		} else {
			elements = append(elements, strconv.FormatUint(raw, 10))
		}
	}
	return strings.Join(elements, " "), nil
}

func parseIntegerVector(tuple *Tuple, text string) error {
	elementSize := int(ElementSize(tuple.Type))
	signed := tuple.Type == 'b' || tuple.Type == 's' || tuple.Type == 'l' || tuple.Type == 'j'

	fields := strings.Fields(text)
	payload := make([]byte, 0, elementSize*len(fields))

	for _, field := range fields {
		var raw uint64
		if signed {
			value, err := strconv.ParseInt(field, 0, 64)
			if err != nil {
				return errors.Wrapf(codec.ErrSyntax, "invalid integer %q", field)
			}
			raw = uint64(value)
		} else {
			value, err := strconv.ParseUint(field, 0, 64)
			if err != nil {
				return errors.Wrapf(codec.ErrSyntax, "invalid integer %q", field)
			}
			raw = value
		}
		payload = appendBigEndian(payload, raw, elementSize)
	}

	tuple.Payload = payload
	return nil
}

func formatFloatVector(tuple *Tuple) (string, error) {
	elementSize := int(ElementSize(tuple.Type))

	var elements []string
	payload := tuple.Payload
	for offset := 0; offset+elementSize <= len(payload); offset += elementSize {
		if elementSize == 4 {
			value := math.Float32frombits(binary.BigEndian.Uint32(payload[offset:]))
			elements = append(elements, strconv.FormatFloat(float64(value), 'g', -1, 32))
		} else {
			value := math.Float64frombits(binary.BigEndian.Uint64(payload[offset:]))
			elements = append(elements, strconv.FormatFloat(value, 'g', -1, 64))
		}
	}
	return strings.Join(elements, " "), nil
}

func parseFloatVector(tuple *Tuple, text string) error {
	elementSize := int(ElementSize(tuple.Type))

	fields := strings.Fields(text)
	payload := make([]byte, 0, elementSize*len(fields))

	for _, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return errors.Wrapf(codec.ErrSyntax, "invalid number %q", field)
		}
		if elementSize == 4 {
			payload = binary.BigEndian.AppendUint32(payload, math.Float32bits(float32(value)))
		} else {
			payload = binary.BigEndian.AppendUint64(payload, math.Float64bits(value))
		}
	}

	tuple.Payload = payload
	return nil
}

func readBigEndian(b []byte) uint64 {
	var value uint64
	for _, octet := range b {
		value = value<<8 | uint64(octet)
	}
	return value
}

func appendBigEndian(payload []byte, value uint64, size int) []byte {
	for shift := 8 * (size - 1); shift >= 0; shift -= 8 {
		payload = append(payload, byte(value>>uint(shift)))
	}
	return payload
}

func signExtend(raw uint64, size int) int64 {
	shift := uint(64 - 8*size)
	return int64(raw<<shift) >> shift
}
