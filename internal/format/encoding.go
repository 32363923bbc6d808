package format

import "encoding/binary"

func u16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

func u32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

func u64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// ReadU32 reads a little-endian uint32 at off.
func ReadU32(b []byte, off int) uint32 {
	return u32(b, off)
}
