package imagemeta

import "testing"

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Format
	}{
		{"jpeg", encodeJPEG(t), FormatJPEG},
		{"png", encodePNG(t), FormatPNG},
		{"jpeg signature only", []byte{0xFF, 0xD8}, FormatJPEG},
		{"garbage", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, FormatUnknown},
		{"short png prefix", []byte{0x89, 'P', 'N', 'G'}, FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, c := range cases {
		if got := DetectFormat(c.data); got != c.want {
			t.Errorf("%s: DetectFormat = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestFormatString(t *testing.T) {
	if FormatJPEG.String() != "JPEG" || FormatPNG.String() != "PNG" || FormatUnknown.String() != "unknown" {
		t.Error("Format strings do not match their names")
	}
}
