// The vc5encoder command encodes a raw image file into a VC-5 bitstream.
//
// Usage: vc5encoder [options] input output
//
// The input is an unformatted file containing a single packed image; the
// pixel format is given with the -p option. The output file receives the
// encoded bitstream. The exit code is the numeric error kind on failure.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/encoder"
	"github.com/cocosip/go-vc5-codec/vc5/identifier"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
)

func main() {
	os.Exit(run())
}

func run() int {
	width := flag.Int("w", 0, "image width in pixels")
	height := flag.Int("h", 0, "image height in pixels")
	pixelFormat := flag.String("p", "RG48", "input pixel format")
	bits := flag.Int("b", 0, "encoded precision in bits per component")
	parts := flag.String("P", "", "comma-separated list of enabled part numbers")
	quantization := flag.String("Q", "", "comma-separated quantization divisors for subbands 1-9")
	preset := flag.String("q", "", "quality preset name")
	presetFile := flag.String("presets", "", "YAML file with additional quality presets")
	withIdentifier := flag.Bool("u", false, "write the unique image identifier")
	verbose := flag.Bool("v", false, "verbose output")
	debug := flag.Bool("z", false, "debug output")
	quiet := flag.Bool("quiet", false, "suppress all output")
	flag.Parse()

	logger := log.New()
	switch {
	case *quiet:
		logger.SetLevel(log.ErrorLevel)
	case *debug:
		logger.SetLevel(log.DebugLevel)
	case *verbose:
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	if flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: vc5encoder [options] input output")
		return int(codec.KindApplication)
	}
	inputPathname := flag.Arg(0)
	outputPathname := flag.Arg(1)

	format := vc5.ParsePixelFormat(*pixelFormat)
	if format == vc5.PixelFormatUnknown {
		logger.WithField("format", *pixelFormat).Error("unknown pixel format")
		return int(codec.KindUnsupported)
	}
	if *width <= 0 || *height <= 0 {
		logger.Error("image dimensions are required")
		return int(codec.KindApplication)
	}

	params := encoder.NewParameters(*width, *height, format)
	params.Verbose = *debug

	if *bits != 0 {
		params.BitsPerComponent = *bits
	}

	if *parts != "" {
		enabled, err := parseParts(*parts)
		if err != nil {
			logger.WithError(err).Error("invalid parts list")
			return int(codec.KindApplication)
		}
		params.EnabledParts = enabled
	}

	if *preset != "" {
		presets := encoder.DefaultPresets
		if *presetFile != "" {
			loaded, err := encoder.LoadPresets(*presetFile)
			if err != nil {
				logger.WithError(err).Error("could not load presets")
				return int(codec.KindResource)
			}
			presets = loaded
		}
		chosen, ok := encoder.LookupPreset(presets, *preset)
		if !ok {
			logger.WithField("preset", *preset).Error("unknown quality preset")
			return int(codec.KindApplication)
		}
		params.Quantization = chosen.Quantization
	}

	if *quantization != "" {
		if err := parseQuantization(*quantization, &params.Quantization); err != nil {
			logger.WithError(err).Error("invalid quantization list")
			return int(codec.KindApplication)
		}
	}

	if *withIdentifier {
		params.IncludeIdentifier = true
		params.Identifier = identifier.New()
	}

	packed, err := os.ReadFile(inputPathname)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: error %d\n", inputPathname, codec.KindResource)
		return int(codec.KindResource)
	}

	enc, err := encoder.New(params)
	if err != nil {
		return fail(inputPathname, err)
	}
	enc.Log = logger

	output, err := stream.Create(outputPathname)
	if err != nil {
		return fail(outputPathname, err)
	}
	defer output.Close()

	if err := enc.EncodeImage(packed, output); err != nil {
		return fail(inputPathname, err)
	}

	logger.WithFields(log.Fields{
		"input":  inputPathname,
		"output": outputPathname,
		"bytes":  output.ByteCount(),
	}).Info("encoded image")

	return 0
}

// fail prints a one-line message naming the failing file and the numeric
// error and returns the exit code.
func fail(pathname string, err error) int {
	kind := codec.KindOf(err)
	fmt.Fprintf(os.Stderr, "%s: error %d (%v)\n", pathname, int(kind), err)
	return int(kind)
}

// parseParts converts a comma-separated list of part numbers into the
// enabled parts mask.
func parseParts(list string) (vc5.EnabledParts, error) {
	var enabled vc5.EnabledParts
	for _, field := range strings.Split(list, ",") {
		part, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || part < 1 || part > 7 {
			return 0, codec.ErrBadArgument
		}
		enabled |= vc5.PartMask(part)
	}
	return enabled, nil
}

// parseQuantization fills the quantization table from a comma-separated
// list of divisors for subbands one through nine.
func parseQuantization(list string, table *[vc5.MaxSubbandCount]int) error {
	fields := strings.Split(list, ",")
	if len(fields) != vc5.MaxSubbandCount-1 {
		return codec.ErrBadArgument
	}
	for i, field := range fields {
		divisor, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || divisor < 1 {
			return codec.ErrBadArgument
		}
		table[i+1] = divisor
	}
	return nil
}
