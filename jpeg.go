package imagemeta

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	TEM  Marker = 0x01
	SOF0 Marker = 0xC0 // SOFn = SOF0+n, n = 0-15 excluding 4, 8 and 12
	DHT  Marker = 0xC4
	JPG  Marker = 0xC8
	DAC  Marker = 0xCC
	RST0 Marker = 0xD0 // RSTn = RST0+n, n = 0-7
	SOI  Marker = 0xD8
	EOI  Marker = 0xD9
	SOS  Marker = 0xDA
	DQT  Marker = 0xDB
	DNL  Marker = 0xDC
	DRI  Marker = 0xDD
	DHP  Marker = 0xDE
	EXP  Marker = 0xDF
	APP0 Marker = 0xE0 // APPn = APP0+n, n = 0-15
	JPG0 Marker = 0xF0 // JPGn = JPG0+n, n = 0-13
	COM  Marker = 0xFE
)

// Marker represents a JPEG marker, which usually indicates the start of a
// segment.
type Marker uint8

var markerNames [256]string

// Initialize markerNames
func init() {
	markerNames[0] = "NUL"
	markerNames[TEM] = "TEM"
	markerNames[DHT] = "DHT"
	markerNames[JPG] = "JPG"
	markerNames[DAC] = "DAC"
	markerNames[SOI] = "SOI"
	markerNames[EOI] = "EOI"
	markerNames[SOS] = "SOS"
	markerNames[DQT] = "DQT"
	markerNames[DNL] = "DNL"
	markerNames[DRI] = "DRI"
	markerNames[DHP] = "DHP"
	markerNames[EXP] = "EXP"
	markerNames[COM] = "COM"
	markerNames[0xFF] = "FILL"

	var i Marker
	for i = 0x02; i <= 0xBF; i++ {
		markerNames[i] = fmt.Sprintf("RES%.2X", i) // Reserved
	}
	for i = SOF0; i <= SOF0+0xF; i++ {
		if i == SOF0+4 || i == SOF0+8 || i == SOF0+12 {
			continue
		}
		markerNames[i] = fmt.Sprintf("SOF%d", i-SOF0)
	}
	for i = RST0; i <= RST0+7; i++ {
		markerNames[i] = fmt.Sprintf("RST%d", i-RST0)
	}
	for i = APP0; i <= APP0+0xF; i++ {
		markerNames[i] = fmt.Sprintf("APP%d", i-APP0)
	}
	for i = JPG0; i <= JPG0+0xD; i++ {
		markerNames[i] = fmt.Sprintf("JPG%d", i-JPG0)
	}
}

// Name returns the name of a marker value.
func (m Marker) Name() string {
	return markerNames[m]
}

// Standalone reports whether a marker has no length field. The range
// covers the restart markers as well as SOI and EOI.
func (m Marker) Standalone() bool {
	return m >= RST0 && m <= EOI
}

// MaxCommentLen is the maximum UTF-8 byte length of a JPEG comment: a
// COM segment's 2-byte length field includes itself.
const MaxCommentLen = 0xFFFF - 2

var (
	exifHeader = []byte("Exif")
	iccHeader  = []byte("ICC_PROFILE\x00")
)

// segmentScanner walks the marker stream of an in-memory JPEG. It yields
// one raw segment per call: the two marker bytes for standalone markers,
// marker plus length plus payload for sized segments, and the whole
// remaining buffer once SOS is reached (entropy-coded data is opaque and
// never parsed).
type segmentScanner struct {
	data []byte
	pos  int
}

func newSegmentScanner(data []byte) (*segmentScanner, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != byte(SOI) {
		return nil, fmt.Errorf("%w: SOI marker not found", ErrInvalidFormat)
	}
	return &segmentScanner{data: data, pos: 2}, nil
}

func (s *segmentScanner) more() bool {
	return s.pos < len(s.data)-1
}

// scan returns the next marker and its raw segment bytes, including the
// 0xFF prefix. After returning SOS the scanner is exhausted.
func (s *segmentScanner) scan() (Marker, []byte, error) {
	if s.data[s.pos] != 0xFF {
		return 0, nil, fmt.Errorf("%w: expected 0xFF at offset %d", ErrParse, s.pos)
	}
	marker := Marker(s.data[s.pos+1])
	if marker == SOS {
		seg := s.data[s.pos:]
		s.pos = len(s.data)
		return marker, seg, nil
	}
	if marker.Standalone() {
		seg := s.data[s.pos : s.pos+2]
		s.pos += 2
		return marker, seg, nil
	}
	if s.pos+4 > len(s.data) {
		return 0, nil, fmt.Errorf("%w: unexpected end of JPEG data", ErrParse)
	}
	size := int(s.data[s.pos+2])<<8 | int(s.data[s.pos+3])
	if size < 2 {
		return 0, nil, fmt.Errorf("%w: segment size %d below minimum", ErrParse, size)
	}
	end := s.pos + 2 + size
	if end > len(s.data) {
		return 0, nil, fmt.Errorf("%w: segment extends beyond buffer", ErrParse)
	}
	seg := s.data[s.pos:end]
	s.pos = end
	return marker, seg, nil
}

// body returns a sized segment's payload, without marker and length bytes.
func body(seg []byte) []byte {
	return seg[4:]
}

// keepMarker reports whether a segment always survives CleanMetadata.
// APP1 and APP2 have conditional handling and are decided by the caller.
func keepMarker(m Marker) bool {
	switch {
	case m >= SOF0 && m <= SOF0+3, m >= SOF0+5 && m <= SOF0+0xF:
		return true // SOF markers and DAC
	case m == DHT, m == DQT, m == DRI:
		return true
	case m == APP0:
		return true // JFIF
	}
	return false
}

// CleanMetadata rebuilds a JPEG stream with non-essential metadata
// removed. Structural segments (SOF, DHT, DQT, DRI), the JFIF APP0
// segment and ICC profile APP2 segments are kept; every other APP
// segment and all comments are dropped. If the first EXIF APP1 segment
// carries an Orientation tag with a value in [1,8], a minimal EXIF
// segment holding just that tag is spliced back in after JFIF. The input
// must pass a structural decode check, as must the output.
func CleanMetadata(data []byte) ([]byte, error) {
	if err := validateJPEG(data); err != nil {
		return nil, err
	}
	scanner, err := newSegmentScanner(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data))
	out = append(out, 0xFF, byte(SOI))

	exifSeen := false
	var orientation uint16
	for scanner.more() {
		marker, seg, err := scanner.scan()
		if err != nil {
			return nil, err
		}
		if marker == SOS {
			out = append(out, seg...)
			break
		}
		if marker.Standalone() {
			out = append(out, seg...)
			continue
		}
		switch {
		case keepMarker(marker):
			out = append(out, seg...)
		case marker == APP0+1:
			if !exifSeen && len(seg) > 10 && bytes.HasPrefix(body(seg), exifHeader) {
				exifSeen = true
				orientation, _ = ExtractOrientation(body(seg)[6:])
			}
		case marker == APP0+2:
			if len(seg) > 16 && bytes.HasPrefix(body(seg), iccHeader) {
				out = append(out, seg...)
			}
		}
	}

	if orientation >= 1 && orientation <= 8 {
		exifSeg, err := orientationSegment(orientation)
		if err != nil {
			return nil, err
		}
		out, err = spliceAfterJFIF(out, exifSeg)
		if err != nil {
			return nil, err
		}
	}
	if err := validateJPEG(out); err != nil {
		return nil, err
	}
	return out, nil
}

// spliceAfterJFIF inserts seg after the first APP0 segment of a rebuilt
// stream, or directly after SOI if there is none. The stream is rebuilt
// rather than mutated in place.
func spliceAfterJFIF(data, seg []byte) ([]byte, error) {
	scanner, err := newSegmentScanner(data)
	if err != nil {
		return nil, err
	}
	at := 2
	for scanner.more() {
		marker, _, err := scanner.scan()
		if err != nil {
			return nil, err
		}
		if marker == APP0 {
			at = scanner.pos
			break
		}
		if marker == SOS {
			break
		}
	}
	out := make([]byte, 0, len(data)+len(seg))
	out = append(out, data[:at]...)
	out = append(out, seg...)
	out = append(out, data[at:]...)
	return out, nil
}

// ReadComment returns the payload of the first COM segment, decoded as
// UTF-8 with invalid sequences replaced. found is false if the stream
// holds no comment; an empty COM segment yields ("", true, nil).
func ReadComment(data []byte) (comment string, found bool, err error) {
	if err := validateJPEG(data); err != nil {
		return "", false, err
	}
	scanner, err := newSegmentScanner(data)
	if err != nil {
		return "", false, err
	}
	for scanner.more() {
		marker, seg, err := scanner.scan()
		if err != nil {
			return "", false, err
		}
		if marker == SOS {
			break
		}
		if marker.Standalone() {
			continue
		}
		if marker == COM {
			return strings.ToValidUTF8(string(body(seg)), "�"), true, nil
		}
	}
	return "", false, nil
}

// WriteComment rebuilds the stream with comment as its only COM segment.
// Existing comments are dropped and the new segment is inserted once,
// immediately before the first DQT or SOS segment; a degenerate stream
// without either gets it appended at the end. The comment must encode to
// at most MaxCommentLen bytes of UTF-8.
func WriteComment(data []byte, comment string) ([]byte, error) {
	if err := validateJPEG(data); err != nil {
		return nil, err
	}
	if len(comment) > MaxCommentLen {
		return nil, fmt.Errorf("%w: comment exceeds %d bytes", ErrInvalidFormat, MaxCommentLen)
	}
	comSeg := make([]byte, 0, 4+len(comment))
	size := len(comment) + 2
	comSeg = append(comSeg, 0xFF, byte(COM), byte(size>>8), byte(size))
	comSeg = append(comSeg, comment...)

	scanner, err := newSegmentScanner(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data)+len(comSeg))
	out = append(out, 0xFF, byte(SOI))
	inserted := false
	for scanner.more() {
		marker, seg, err := scanner.scan()
		if err != nil {
			return nil, err
		}
		if !inserted && (marker == DQT || marker == SOS) {
			out = append(out, comSeg...)
			inserted = true
		}
		if marker == SOS {
			out = append(out, seg...)
			break
		}
		if marker.Standalone() {
			out = append(out, seg...)
			continue
		}
		if marker != COM {
			out = append(out, seg...)
		}
	}
	if !inserted {
		out = append(out, comSeg...)
	}
	if err := validateJPEG(out); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateComment returns the number of bytes WriteComment adds to a
// stream that has no comment yet: the COM marker and length field plus
// the UTF-8 text.
func EstimateComment(comment string) int {
	return 4 + len(comment)
}

// Segment represents a marker and its segment data, without the marker
// and length bytes.
type Segment struct {
	Marker Marker
	Data   []byte
}

// ReadSegments reads a JPEG stream up to and including the SOS marker
// and returns a slice with marker and segment data. Standalone markers
// yield nil data; the SOS entry carries the entropy-coded trailer.
func ReadSegments(data []byte) ([]Segment, error) {
	scanner, err := newSegmentScanner(data)
	if err != nil {
		return nil, err
	}
	segments := make([]Segment, 0, 20)
	for scanner.more() {
		marker, seg, err := scanner.scan()
		if err != nil {
			return segments, err
		}
		switch {
		case marker == SOS:
			segments = append(segments, Segment{marker, seg[2:]})
			return segments, nil
		case marker.Standalone():
			segments = append(segments, Segment{marker, nil})
		default:
			segments = append(segments, Segment{marker, body(seg)})
		}
	}
	return segments, nil
}
