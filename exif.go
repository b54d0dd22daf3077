package imagemeta

import (
	"encoding/binary"
	"fmt"

	tiff "github.com/garyhouston/tiff66"
)

// ifdEntrySize is the serialized size of one IFD entry.
const ifdEntrySize = 12

// ExtractOrientation scans IFD0 of a TIFF blob (the bytes following an
// APP1 segment's "Exif\0\0" header) for the Orientation tag and returns
// its raw inline SHORT value. The lookup is best-effort: any structural
// inconsistency reports false rather than an error. Values stored behind
// an external offset are not followed; Orientation always fits inline.
func ExtractOrientation(buf []byte) (uint16, bool) {
	valid, order, ifdPos := tiff.GetHeader(buf)
	if !valid {
		return 0, false
	}
	pos := int(ifdPos)
	if pos < 0 || pos+2 > len(buf) {
		return 0, false
	}
	count := int(order.Uint16(buf[pos:]))
	for i := 0; i < count; i++ {
		entry := pos + 2 + i*ifdEntrySize
		if entry+ifdEntrySize > len(buf) {
			break
		}
		if order.Uint16(buf[entry:]) == tiff.Orientation {
			return order.Uint16(buf[entry+8:]), true
		}
	}
	return 0, false
}

// orientationSegment emits an APP1 segment containing a minimal EXIF
// block: "Exif\0\0", a little-endian TIFF header, and an IFD0 with a
// single SHORT Orientation entry and a zero next-IFD pointer. The
// segment length field is patched in after the payload is built; the
// output has the same byte length for every valid orientation.
func orientationSegment(orientation uint16) ([]byte, error) {
	order := binary.LittleEndian
	value := make([]byte, 2)
	order.PutUint16(value, orientation)

	node := tiff.NewIFDNode(tiff.TIFFSpace)
	node.Order = order
	node.Fields = []tiff.Field{{
		Tag:   tiff.Orientation,
		Type:  tiff.SHORT,
		Count: 1,
		Data:  value,
	}}
	tiffBuf := make([]byte, tiff.HeaderSize+node.TreeSize())
	tiff.PutHeader(tiffBuf, order, tiff.HeaderSize)
	if _, err := node.PutIFDTree(tiffBuf, tiff.HeaderSize); err != nil {
		return nil, fmt.Errorf("%w: packing orientation IFD: %v", ErrParse, err)
	}

	seg := make([]byte, 0, 4+6+len(tiffBuf))
	seg = append(seg, 0xFF, byte(APP0+1), 0, 0)
	seg = append(seg, "Exif\x00\x00"...)
	seg = append(seg, tiffBuf...)
	binary.BigEndian.PutUint16(seg[2:], uint16(len(seg)-2))
	return seg, nil
}
