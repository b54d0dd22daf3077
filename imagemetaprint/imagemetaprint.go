package main

// Print the segments of a JPEG file or the chunks of a PNG file, along
// with any text fields. With -json the listing is emitted as JSON.

import (
	"flag"
	"fmt"
	"log"
	"os"

	json "github.com/goccy/go-json"
	"github.com/webimg/imagemeta"
)

var jsonOut = flag.Bool("json", false, "emit the listing as JSON")

type entry struct {
	Type string `json:"type"`
	Size int    `json:"size"`
}

type listing struct {
	Format  string                `json:"format"`
	Entries []entry               `json:"entries"`
	Comment *string               `json:"comment,omitempty"`
	Texts   []imagemeta.TextChunk `json:"texts,omitempty"`
}

func scanJPEG(data []byte) (listing, error) {
	l := listing{Format: imagemeta.FormatJPEG.String()}
	segments, err := imagemeta.ReadSegments(data)
	if err != nil {
		return l, err
	}
	for _, s := range segments {
		l.Entries = append(l.Entries, entry{s.Marker.Name(), len(s.Data)})
	}
	comment, found, err := imagemeta.ReadComment(data)
	if err != nil {
		return l, err
	}
	if found {
		l.Comment = &comment
	}
	return l, nil
}

func scanPNG(data []byte) (listing, error) {
	l := listing{Format: imagemeta.FormatPNG.String()}
	chunks, err := imagemeta.ReadChunks(data)
	if err != nil {
		return l, err
	}
	for _, c := range chunks {
		l.Entries = append(l.Entries, entry{c.Type, len(c.Data)})
	}
	l.Texts, err = imagemeta.ReadTextChunks(data)
	return l, err
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Printf("Usage: %s [-json] file\n", os.Args[0])
		return
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	var l listing
	switch imagemeta.DetectFormat(data) {
	case imagemeta.FormatJPEG:
		l, err = scanJPEG(data)
	case imagemeta.FormatPNG:
		l, err = scanPNG(data)
	default:
		log.Fatalf("%s: unrecognized image format", flag.Arg(0))
	}
	if err != nil {
		log.Fatal(err)
	}
	if *jsonOut {
		buf, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(buf))
		return
	}
	for _, e := range l.Entries {
		fmt.Printf("%s, %d bytes\n", e.Type, e.Size)
	}
	if l.Comment != nil {
		fmt.Printf("comment: %q\n", *l.Comment)
	}
	for _, t := range l.Texts {
		fmt.Printf("tEXt %s: %q\n", t.Keyword, t.Text)
	}
}
