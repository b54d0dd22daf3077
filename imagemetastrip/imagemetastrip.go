package main

import (
	"fmt"
	"log"
	"os"

	"github.com/webimg/imagemeta"
)

// Make a copy of a JPEG or PNG file with non-essential metadata removed.
func main() {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: %s infile outfile\n", os.Args[0])
		return
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	var cleaned []byte
	switch format := imagemeta.DetectFormat(data); format {
	case imagemeta.FormatJPEG:
		cleaned, err = imagemeta.CleanMetadata(data)
	case imagemeta.FormatPNG:
		cleaned, err = imagemeta.CleanChunks(data)
	default:
		log.Fatalf("%s: unrecognized image format", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(os.Args[2], cleaned, 0666); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s: %d bytes -> %d bytes\n", os.Args[2], len(data), len(cleaned))
}
