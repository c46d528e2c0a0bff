// The vc5metadata command converts metadata between the XML representation
// and the chunked binary representation.
//
// Usage:
//
//	vc5metadata parse input.xml output.bin
//	vc5metadata dump input.bin output.xml
//
// The parse direction reads an XML test case and writes the binary
// metadata chunks; the dump direction reads binary chunks and writes XML.
// The -d option removes duplicate tuples while dumping.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/cocosip/go-vc5-codec/codec"
	"github.com/cocosip/go-vc5-codec/vc5/bitstream"
	"github.com/cocosip/go-vc5-codec/vc5/metadata"
	"github.com/cocosip/go-vc5-codec/vc5/stream"
	"github.com/cocosip/go-vc5-codec/vc5/syntax"
)

func main() {
	os.Exit(run())
}

func run() int {
	removeDuplicates := flag.Bool("d", false, "remove duplicate tuples while dumping")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	logger := log.New()
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if flag.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "usage: vc5metadata [options] parse|dump input output")
		return int(codec.KindApplication)
	}

	mode := flag.Arg(0)
	inputPathname := flag.Arg(1)
	outputPathname := flag.Arg(2)

	var err error
	switch mode {
	case "parse":
		err = parseMetadata(inputPathname, outputPathname)
	case "dump":
		err = dumpMetadata(inputPathname, outputPathname, *removeDuplicates)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		return int(codec.KindApplication)
	}

	if err != nil {
		kind := codec.KindOf(err)
		fmt.Fprintf(os.Stderr, "%s: error %d (%v)\n", inputPathname, int(kind), err)
		return int(kind)
	}

	return 0
}

// parseMetadata converts an XML test case into binary metadata chunks.
func parseMetadata(inputPathname, outputPathname string) error {
	input, err := os.Open(inputPathname)
	if err != nil {
		return codec.ErrFileOpen
	}
	defer input.Close()

	chunks, err := metadata.ParseXML(input)
	if err != nil {
		return err
	}

	output := stream.NewBuffer()
	bits := bitstream.New(output)

	for _, chunk := range chunks {
		large := chunk.Tag>>8 == metadata.ChunkLarge
		if err := metadata.WriteChunk(bits, chunk.Tuples, large); err != nil {
			return err
		}
	}
	if err := bits.Flush(); err != nil {
		return err
	}

	if err := os.WriteFile(outputPathname, output.Bytes(), 0o644); err != nil {
		return codec.ErrFileWrite
	}
	return nil
}

// dumpMetadata converts binary metadata chunks into the XML
// representation.
func dumpMetadata(inputPathname, outputPathname string, removeDuplicates bool) error {
	data, err := os.ReadFile(inputPathname)
	if err != nil {
		return codec.ErrFileOpen
	}

	bits := bitstream.New(stream.FromBytes(data))

	var chunks []*metadata.Chunk
	for !bits.EndOfStream() {
		segment := syntax.GetSegment(bits)
		if bits.Err() != nil {
			break
		}

		tag := syntax.RequiredTag(segment.Tag)
		size := syntax.ChunkSize(segment)

		var chunkTag uint16
		switch {
		case tag == metadata.ChunkSmall:
			chunkTag = metadata.ChunkSmall
		case tag>>8 == metadata.ChunkLarge:
			chunkTag = uint16(metadata.ChunkLarge) << 8
		default:
			return codec.ErrInvalidTag
		}

		tuples, err := metadata.ReadChunk(bits, size)
		if err != nil {
			return err
		}

		tree, err := metadata.BuildTree(tuples)
		if err != nil {
			return err
		}

		chunks = append(chunks, &metadata.Chunk{Tag: chunkTag, Tuples: tree})
	}

	if removeDuplicates {
		metadata.RemoveDuplicateTuples(chunks)
	}

	output, err := os.Create(outputPathname)
	if err != nil {
		return codec.ErrFileCreate
	}
	defer output.Close()

	return metadata.DumpXML(output, chunks)
}
