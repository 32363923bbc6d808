package format

import (
	"bytes"
	"fmt"
)

// HBIN describes a hive bin. Each HBIN begins with a 0x20-byte header:
//
//	Offset  Size  Field
//	0x00    4     'h' 'b' 'i' 'n'
//	0x04    4     Offset of this HBIN relative to the first one
//	0x08    4     Size of HBIN, multiple of 0x1000
type HBIN struct {
	FileOffset uint32
	Size       uint32
}

// NextHBIN validates the HBIN header located at off within b and returns the
// header along with the offset of the subsequent HBIN.
func NextHBIN(b []byte, off int) (HBIN, int, error) {
	if off < 0 || off+HBINHeaderSize > len(b) {
		return HBIN{}, 0, fmt.Errorf("hbin: %w", ErrTruncated)
	}
	head := b[off : off+HBINHeaderSize]
	if !bytes.Equal(head[:4], HBINSignature) {
		return HBIN{}, 0, fmt.Errorf("hbin at 0x%x: %w", off, ErrSignatureMismatch)
	}
	size := u32(head, HBINSizeOffset)
	if size == 0 || size%HBINAlignment != 0 {
		return HBIN{}, 0, fmt.Errorf("hbin at 0x%x: invalid size %d", off, size)
	}
	next := off + int(size)
	if next > len(b) {
		return HBIN{}, 0, fmt.Errorf("hbin at 0x%x: %w", off, ErrTruncated)
	}
	return HBIN{FileOffset: u32(head, HBINFileOffsetField), Size: size}, next, nil
}
