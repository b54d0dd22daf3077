package imagemeta

import "errors"

// Error kinds reported by the stream engines. Operations wrap these with
// fmt.Errorf("...: %w", ...) so callers can test with errors.Is.
var (
	// ErrInvalidFormat indicates a signature mismatch, a failed
	// structural decode check, or a constraint violation on a text
	// field (oversize comment, bad tEXt keyword).
	ErrInvalidFormat = errors.New("invalid image format")

	// ErrParse indicates stream desynchronization: a byte other than
	// 0xFF where a JPEG marker was expected, a length field running
	// past the end of the buffer, or a missing IEND chunk.
	ErrParse = errors.New("image parse error")
)
