package imagemeta

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/jpegn"
)

// The engines never trust their own rewrites: every operation runs the
// input through a structural decode check, and the mutating operations
// run the rebuilt output through the same check before returning it.

// validateJPEG confirms that the buffer decodes to a structurally sound
// JPEG with non-zero dimensions.
func validateJPEG(data []byte) error {
	if len(data) < 4 || data[0] != 0xFF || data[1] != byte(SOI) {
		return fmt.Errorf("%w: not a JPEG stream", ErrInvalidFormat)
	}
	cfg, err := jpegn.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: undecodable JPEG: %v", ErrInvalidFormat, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: zero JPEG dimensions", ErrInvalidFormat)
	}
	return nil
}

// validatePNG confirms that the buffer decodes to a structurally sound
// PNG header with non-zero dimensions and a recognized color/bit-depth
// combination.
func validatePNG(data []byte) error {
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return fmt.Errorf("%w: not a PNG stream", ErrInvalidFormat)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: undecodable PNG: %v", ErrInvalidFormat, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: zero PNG dimensions", ErrInvalidFormat)
	}
	return nil
}
