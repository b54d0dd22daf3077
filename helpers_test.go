package imagemeta

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// encodeJPEG returns a small baseline JPEG from the standard library
// encoder: SOI, DQT, SOF0, DHT and SOS, with no APP segments.
func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 16), uint8(y * 16), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encoding JPEG fixture: %v", err)
	}
	return buf.Bytes()
}

// encodePNG returns a small opaque PNG; the standard library encoder
// emits it as truecolor (type 2), so tRNS and bKGD splices stay legal.
func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 16), uint8(y * 16), 64, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding PNG fixture: %v", err)
	}
	return buf.Bytes()
}

// sizedSegment builds a raw JPEG segment: marker, length field, payload.
func sizedSegment(marker Marker, payload []byte) []byte {
	size := len(payload) + 2
	seg := make([]byte, 0, 2+size)
	seg = append(seg, 0xFF, byte(marker), byte(size>>8), byte(size))
	return append(seg, payload...)
}

// spliceSegments inserts raw segments directly after SOI.
func spliceSegments(t *testing.T, data []byte, segs ...[]byte) []byte {
	t.Helper()
	if len(data) < 2 || data[0] != 0xFF || data[1] != byte(SOI) {
		t.Fatal("fixture is not a JPEG")
	}
	out := append([]byte(nil), data[:2]...)
	for _, seg := range segs {
		out = append(out, seg...)
	}
	return append(out, data[2:]...)
}

func jfifSegment() []byte {
	payload := []byte("JFIF\x00")
	payload = append(payload, 1, 1, 0, 0, 1, 0, 1, 0, 0)
	return sizedSegment(APP0, payload)
}

func exifSegment(tiffBlob []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiffBlob...)
	return sizedSegment(APP0+1, payload)
}

// tiffWithTags builds a little-endian TIFF blob whose IFD0 carries
// Make, Model, Orientation and DateTimeOriginal entries, with the
// string values stored behind offsets after the table.
func tiffWithTags(orientation uint16) []byte {
	le := binary.LittleEndian
	makeVal := []byte("Canon\x00")
	modelVal := []byte("EOS5D\x00")
	dateVal := []byte("2024:01:02 03:04:05\x00")

	// header(8) + count(2) + 4 entries(48) + next(4) = value area at 62
	valueArea := uint32(62)
	buf := make([]byte, 0, 62+len(makeVal)+len(modelVal)+len(dateVal))
	buf = append(buf, 'I', 'I')
	buf = le.AppendUint16(buf, 42)
	buf = le.AppendUint32(buf, 8)
	buf = le.AppendUint16(buf, 4)

	entry := func(tag, typ uint16, count, value uint32) {
		buf = le.AppendUint16(buf, tag)
		buf = le.AppendUint16(buf, typ)
		buf = le.AppendUint32(buf, count)
		buf = le.AppendUint32(buf, value)
	}
	entry(0x010F, 2, uint32(len(makeVal)), valueArea)
	entry(0x0110, 2, uint32(len(modelVal)), valueArea+uint32(len(makeVal)))
	entry(0x0112, 3, 1, uint32(orientation))
	entry(0x9003, 2, uint32(len(dateVal)), valueArea+uint32(len(makeVal)+len(modelVal)))
	buf = le.AppendUint32(buf, 0) // no next IFD

	buf = append(buf, makeVal...)
	buf = append(buf, modelVal...)
	buf = append(buf, dateVal...)
	return buf
}

func markerCount(t *testing.T, data []byte, marker Marker) int {
	t.Helper()
	segments, err := ReadSegments(data)
	if err != nil {
		t.Fatalf("reading segments: %v", err)
	}
	n := 0
	for _, s := range segments {
		if s.Marker == marker {
			n++
		}
	}
	return n
}

// pngChunkRaw builds a raw chunk: length, type, payload, CRC.
func pngChunkRaw(typ string, payload []byte) []byte {
	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	chunk = append(chunk, typ...)
	chunk = append(chunk, payload...)
	return binary.BigEndian.AppendUint32(chunk, chunkCRC(typ, payload))
}

// insertBeforeIDAT splices raw chunks in front of the first IDAT chunk.
func insertBeforeIDAT(t *testing.T, data []byte, chunks ...[]byte) []byte {
	t.Helper()
	scanner, err := newChunkScanner(data)
	if err != nil {
		t.Fatalf("scanning PNG fixture: %v", err)
	}
	at := -1
	for scanner.more() {
		start := scanner.pos
		typ, _, err := scanner.scan()
		if err != nil {
			t.Fatalf("scanning PNG fixture: %v", err)
		}
		if typ == "IDAT" {
			at = start
			break
		}
	}
	if at < 0 {
		t.Fatal("fixture has no IDAT chunk")
	}
	out := append([]byte(nil), data[:at]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, data[at:]...)
}

func hasChunk(t *testing.T, data []byte, typ string) bool {
	t.Helper()
	chunks, err := ReadChunks(data)
	if err != nil {
		t.Fatalf("reading chunks: %v", err)
	}
	for _, c := range chunks {
		if c.Type == typ {
			return true
		}
	}
	return false
}
