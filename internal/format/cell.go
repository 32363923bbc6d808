package format

import (
	"errors"
	"fmt"
)

// Cell represents a single allocation (free or in-use) within an HBIN.
//
//	Offset  Size  Description
//	0x00    4     Signed size. Negative => allocated, positive => free.
//	              The absolute value includes the 4-byte header.
//	0x04    ...   Payload. First two bytes form the record tag when allocated.
type Cell struct {
	Size int
	Free bool
	Data []byte // payload, aliased to the hive buffer
}

// ParseCell decodes the cell that starts at the beginning of b.
func ParseCell(b []byte) (Cell, error) {
	if len(b) < CellHeaderSize {
		return Cell{}, fmt.Errorf("cell: %w", ErrTruncated)
	}
	raw := int32(u32(b, 0))
	if raw == 0 {
		return Cell{}, errors.New("cell: zero length")
	}
	allocated := raw < 0
	size := int(raw)
	if allocated {
		size = -size
	}
	if size < CellHeaderSize || size > len(b) {
		return Cell{}, fmt.Errorf("cell: %w", ErrTruncated)
	}
	return Cell{Size: size, Free: !allocated, Data: b[CellHeaderSize:size]}, nil
}

// CellPayload resolves a hive-relative cell offset against the whole hive
// image and returns the payload of the allocated cell found there.
func CellPayload(hive []byte, off uint32) ([]byte, error) {
	if off == InvalidOffset {
		return nil, fmt.Errorf("cell 0x%x: %w", off, ErrTruncated)
	}
	abs := HiveDataBase + int(off)
	if abs < HiveDataBase || abs >= len(hive) {
		return nil, fmt.Errorf("cell 0x%x: offset outside hive: %w", off, ErrTruncated)
	}
	c, err := ParseCell(hive[abs:])
	if err != nil {
		return nil, fmt.Errorf("cell 0x%x: %w", off, err)
	}
	if c.Free {
		return nil, fmt.Errorf("cell 0x%x: %w", off, ErrFreeCell)
	}
	return c.Data, nil
}
