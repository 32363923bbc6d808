package regvalue

import (
	"encoding/binary"
	"strings"
)

// EncodeString returns s as NUL-terminated UTF-16LE.
func EncodeString(s string) []byte {
	out, err := utf16le.NewEncoder().String(s + "\x00")
	if err != nil {
		return []byte{0, 0}
	}
	return []byte(out)
}

// EncodeStrings returns a REG_MULTI_SZ payload for ss.
func EncodeStrings(ss []string) []byte {
	var b strings.Builder
	for _, s := range ss {
		b.WriteString(s)
		b.WriteByte(0)
	}
	return EncodeString(b.String())
}

// EncodeDWORD returns v little-endian.
func EncodeDWORD(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// EncodeQWORD returns v little-endian.
func EncodeQWORD(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}
