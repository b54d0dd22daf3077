package imagemeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// chunkOverhead is the byte count of a chunk's length, type and CRC
// fields.
const chunkOverhead = 12

// Chunk types that survive CleanChunks: the core chunks plus everything
// that affects decodability, transparency, color or physical geometry.
var criticalChunks = map[string]bool{
	"IHDR": true, "PLTE": true, "IDAT": true, "IEND": true,
	"tRNS": true,
	"gAMA": true, "cHRM": true, "sRGB": true, "iCCP": true, "sBIT": true,
	"pHYs": true,
}

// TextChunk is the keyword/text pair of a PNG tEXt chunk.
type TextChunk struct {
	Keyword string
	Text    string
}

// MaxKeywordLen is the PNG limit on tEXt keyword length.
const MaxKeywordLen = 79

// chunkScanner walks the chunk stream of an in-memory PNG, one raw
// chunk per call (length, type, data and CRC). The caller decides
// whether a short read is an error or merely the end of a damaged
// trailer.
type chunkScanner struct {
	data []byte
	pos  int
}

func newChunkScanner(data []byte) (*chunkScanner, error) {
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return nil, fmt.Errorf("%w: PNG signature not found", ErrInvalidFormat)
	}
	return &chunkScanner{data: data, pos: len(pngSignature)}, nil
}

func (s *chunkScanner) more() bool {
	return s.pos < len(s.data)
}

// scan returns the next chunk type and the raw chunk bytes.
func (s *chunkScanner) scan() (string, []byte, error) {
	if s.pos+8 > len(s.data) {
		return "", nil, fmt.Errorf("%w: unexpected end of PNG data", ErrParse)
	}
	length := int(binary.BigEndian.Uint32(s.data[s.pos:]))
	end := s.pos + chunkOverhead + length
	if end < s.pos || end > len(s.data) {
		return "", nil, fmt.Errorf("%w: chunk extends beyond buffer", ErrParse)
	}
	typ := string(s.data[s.pos+4 : s.pos+8])
	chunk := s.data[s.pos:end]
	s.pos = end
	return typ, chunk, nil
}

// chunkData strips the length, type and CRC fields from a raw chunk.
func chunkData(chunk []byte) []byte {
	return chunk[8 : len(chunk)-4]
}

// chunkCRC computes the PNG CRC-32 over the chunk type and data fields.
func chunkCRC(typ string, data []byte) uint32 {
	crc := crc32.ChecksumIEEE([]byte(typ))
	return crc32.Update(crc, crc32.IEEETable, data)
}

// CleanChunks rebuilds a PNG stream keeping only the critical and
// rendering-relevant chunks (IHDR, PLTE, IDAT, IEND, tRNS, gAMA, cHRM,
// sRGB, iCCP, sBIT, pHYs). Text chunks and all other ancillary chunks
// are dropped. The walk is strict: a truncated chunk is a parse error.
// Input and output both must pass a structural decode check.
func CleanChunks(data []byte) ([]byte, error) {
	if err := validatePNG(data); err != nil {
		return nil, err
	}
	scanner, err := newChunkScanner(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data))
	out = append(out, pngSignature...)
	for scanner.more() {
		typ, chunk, err := scanner.scan()
		if err != nil {
			return nil, err
		}
		if criticalChunks[typ] {
			out = append(out, chunk...)
		}
		if typ == "IEND" {
			break
		}
	}
	if err := validatePNG(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadTextChunks collects every non-empty tEXt chunk up to IEND. The
// payload splits at its first null byte into keyword and text; a payload
// without a null yields an empty keyword and the whole payload as text.
// Unlike the rewriting operations, the scan is lenient: a malformed
// chunk header ends it silently instead of failing, so a damaged trailer
// doesn't hide the text that precedes it.
func ReadTextChunks(data []byte) ([]TextChunk, error) {
	if err := validatePNG(data); err != nil {
		return nil, err
	}
	scanner, err := newChunkScanner(data)
	if err != nil {
		return nil, err
	}
	var chunks []TextChunk
	for scanner.more() {
		typ, chunk, err := scanner.scan()
		if err != nil {
			break
		}
		if typ == "tEXt" && len(chunk) > chunkOverhead {
			payload := chunkData(chunk)
			var keyword, text []byte
			if i := bytes.IndexByte(payload, 0); i >= 0 {
				keyword, text = payload[:i], payload[i+1:]
			} else {
				text = payload
			}
			chunks = append(chunks, TextChunk{
				Keyword: strings.ToValidUTF8(string(keyword), "�"),
				Text:    strings.ToValidUTF8(string(text), "�"),
			})
		}
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

// validKeyword reports whether a tEXt keyword is 1-79 bytes of ASCII
// letters, digits and spaces.
func validKeyword(keyword string) bool {
	if len(keyword) < 1 || len(keyword) > MaxKeywordLen {
		return false
	}
	for i := 0; i < len(keyword); i++ {
		c := keyword[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == ' ':
		default:
			return false
		}
	}
	return true
}

// AddTextChunk rebuilds the stream with a new tEXt chunk spliced in
// immediately before IEND. Existing chunks are untouched; adding the
// same keyword twice yields two chunks. The text may contain any bytes,
// including nulls, which readers pass through.
func AddTextChunk(data []byte, keyword, text string) ([]byte, error) {
	if err := validatePNG(data); err != nil {
		return nil, err
	}
	if !validKeyword(keyword) {
		return nil, fmt.Errorf("%w: tEXt keyword must be 1-%d ASCII alphanumeric or space characters", ErrInvalidFormat, MaxKeywordLen)
	}
	scanner, err := newChunkScanner(data)
	if err != nil {
		return nil, err
	}
	iendStart := -1
	for scanner.more() {
		start := scanner.pos
		typ, _, err := scanner.scan()
		if err != nil {
			break
		}
		if typ == "IEND" {
			iendStart = start
			break
		}
	}
	if iendStart < 0 {
		return nil, fmt.Errorf("%w: IEND chunk not found", ErrParse)
	}

	payload := make([]byte, 0, len(keyword)+1+len(text))
	payload = append(payload, keyword...)
	payload = append(payload, 0)
	payload = append(payload, text...)

	out := make([]byte, 0, len(data)+chunkOverhead+len(payload))
	out = append(out, data[:iendStart]...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, "tEXt"...)
	out = append(out, payload...)
	out = binary.BigEndian.AppendUint32(out, chunkCRC("tEXt", payload))
	out = append(out, data[iendStart:]...)

	if err := validatePNG(out); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateTextChunk returns the number of bytes AddTextChunk adds: chunk
// overhead plus keyword, null separator and text.
func EstimateTextChunk(keyword, text string) int {
	return chunkOverhead + len(keyword) + 1 + len(text)
}

// Chunk represents a chunk type and its data, without length and CRC
// fields.
type Chunk struct {
	Type string
	Data []byte
}

// ReadChunks reads a PNG stream up to and including IEND and returns
// the chunk sequence. The walk is strict, like CleanChunks.
func ReadChunks(data []byte) ([]Chunk, error) {
	scanner, err := newChunkScanner(data)
	if err != nil {
		return nil, err
	}
	chunks := make([]Chunk, 0, 8)
	for scanner.more() {
		typ, chunk, err := scanner.scan()
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, Chunk{typ, chunkData(chunk)})
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}
