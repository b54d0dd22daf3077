package imagemeta

import "bytes"

// Format identifies the container format of a byte stream.
type Format int

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "JPEG"
	case FormatPNG:
		return "PNG"
	}
	return "unknown"
}

// DetectFormat sniffs the container format from the stream signature.
func DetectFormat(data []byte) Format {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == byte(SOI):
		return FormatJPEG
	case len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature):
		return FormatPNG
	}
	return FormatUnknown
}
