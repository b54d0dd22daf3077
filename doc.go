/*
Package imagemeta strips privacy-sensitive and non-essential metadata
from JPEG and PNG byte streams and gives narrow access to one
human-readable text field per format: the JPEG comment segment and the
PNG tEXt chunk. Compressed image data is never decoded or re-encoded;
the streams are rewritten one segment or chunk at a time, and both input
and output must pass a structural decode check.

Example: Strip a JPEG file, keeping JFIF, ICC profiles and the EXIF
orientation.

	package main

	import (
		"log"
		"os"

		"github.com/webimg/imagemeta"
	)

	func main() {
		if len(os.Args) != 3 {
			log.Fatalf("Usage: %s infile outfile", os.Args[0])
		}
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
		cleaned, err := imagemeta.CleanMetadata(data)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(os.Args[2], cleaned, 0666); err != nil {
			log.Fatal(err)
		}
	}

Example: Tag a PNG file and read the tags back.

	tagged, err := imagemeta.AddTextChunk(data, "Author", "J. Doe")
	if err != nil {
		log.Fatal(err)
	}
	chunks, err := imagemeta.ReadTextChunks(tagged)
	if err != nil {
		log.Fatal(err)
	}
	for _, c := range chunks {
		fmt.Printf("%s: %s\n", c.Keyword, c.Text)
	}

All operations are pure functions from an input buffer to a fresh output
buffer and may run concurrently over independent buffers.
*/
package imagemeta
