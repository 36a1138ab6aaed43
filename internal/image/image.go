// Package image holds the immutable byte image a container is parsed
// from and the bounds-checked little-endian readers the rest of the
// analyzer builds on.
package image

import (
	"encoding/binary"
	"fmt"
)

// Image is an immutable sequence of bytes. Every offset passed to its
// methods is relative to the start of the image. Reads are total: an
// out-of-range access returns ErrOutOfRange rather than panicking.
type Image struct {
	bytes []byte
}

// New wraps raw bytes as an Image. The caller must not mutate b afterward.
func New(b []byte) *Image {
	return &Image{bytes: b}
}

// Len returns the image size in bytes.
func (im *Image) Len() int { return len(im.bytes) }

// ErrOutOfRange is returned by any read whose range exceeds the image.
type ErrOutOfRange struct {
	Offset, Length, ImageLen int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("out of range: offset 0x%x length %d exceeds image length 0x%x", e.Offset, e.Length, e.ImageLen)
}

func (im *Image) checkRange(offset, length int) error {
	if offset < 0 || length < 0 || offset+length > len(im.bytes) {
		return &ErrOutOfRange{Offset: offset, Length: length, ImageLen: len(im.bytes)}
	}
	return nil
}

// U8 reads one byte at offset.
func (im *Image) U8(offset int) (uint8, error) {
	if err := im.checkRange(offset, 1); err != nil {
		return 0, err
	}
	return im.bytes[offset], nil
}

// U16 reads a little-endian uint16 at offset.
func (im *Image) U16(offset int) (uint16, error) {
	if err := im.checkRange(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(im.bytes[offset : offset+2]), nil
}

// U32 reads a little-endian uint32 at offset.
func (im *Image) U32(offset int) (uint32, error) {
	if err := im.checkRange(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(im.bytes[offset : offset+4]), nil
}

// U64 reads a little-endian uint64 at offset.
func (im *Image) U64(offset int) (uint64, error) {
	if err := im.checkRange(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(im.bytes[offset : offset+8]), nil
}

// Slice returns a read-only view [offset, offset+length).
func (im *Image) Slice(offset, length int) ([]byte, error) {
	if err := im.checkRange(offset, length); err != nil {
		return nil, err
	}
	return im.bytes[offset : offset+length : offset+length], nil
}

// CString reads a NUL-terminated string starting at offset.
func (im *Image) CString(offset int) (string, error) {
	if offset < 0 || offset > len(im.bytes) {
		return "", &ErrOutOfRange{Offset: offset, Length: 1, ImageLen: len(im.bytes)}
	}
	end := offset
	for end < len(im.bytes) && im.bytes[end] != 0 {
		end++
	}
	if end >= len(im.bytes) {
		return "", &ErrOutOfRange{Offset: offset, Length: end - offset, ImageLen: len(im.bytes)}
	}
	return string(im.bytes[offset:end]), nil
}

// PascalString reads a length-prefixed (one byte count, no NUL) string,
// as used by NE resident/non-resident name tables.
func (im *Image) PascalString(offset int) (string, int, error) {
	n, err := im.U8(offset)
	if err != nil {
		return "", 0, err
	}
	s, err := im.Slice(offset+1, int(n))
	if err != nil {
		return "", 0, err
	}
	return string(s), 1 + int(n), nil
}
