// The vc5decoder command decodes a VC-5 bitstream into a raw image file.
//
// Usage: vc5decoder [options] input output
//
// The input is a file containing an encoded bitstream; the output file
// receives the packed image in the pixel format given with the -p option.
// The exit code is the numeric error kind on failure.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5"
	"github.com/cocosip/go-vc5-codec/vc5/decoder"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
)

func main() {
	os.Exit(run())
}

func run() int {
	pixelFormat := flag.String("p", "RG48", "output pixel format")
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
		fmt.Fprintln(os.Stderr, "usage: vc5decoder [options] input output")
		return int(codec.KindApplication)
	}
	inputPathname := flag.Arg(0)
	outputPathname := flag.Arg(1)

	format := vc5.ParsePixelFormat(*pixelFormat)
	if format == vc5.PixelFormatUnknown {
		logger.WithField("format", *pixelFormat).Error("unknown pixel format")
		return int(codec.KindUnsupported)
	}

	input, err := stream.Open(inputPathname)
	if err != nil {
		return fail(inputPathname, err)
	}
	defer input.Close()

	dec := decoder.New(decoder.Parameters{
		OutputFormat: format,
		Verbose:      *debug,
	})
	dec.Log = logger

	packed, width, height, err := dec.DecodeImage(input)
	if err != nil {
		return fail(inputPathname, err)
	}

	if err := os.WriteFile(outputPathname, packed, 0o644); err != nil {
		return fail(outputPathname, codec.ErrFileWrite)
	}

	logger.WithFields(log.Fields{
		"input":  inputPathname,
		"output": outputPathname,
		"width":  width,
		"height": height,
	}).Info("decoded image")

	if dec.HasIdentifier {
		logger.WithFields(log.Fields{
			"sequence": dec.Identifier.ImageSequenceID,
			"number":   dec.Identifier.ImageSequenceNumber,
		}).Info("unique image identifier")
	}

	return 0
}

// fail prints a one-line message naming the failing file and the numeric
// error and returns the exit code.
func fail(pathname string, err error) int {
	kind := codec.KindOf(err)
	fmt.Fprintf(os.Stderr, "%s: error %d (%v)\n", pathname, int(kind), err)
	return int(kind)
}
